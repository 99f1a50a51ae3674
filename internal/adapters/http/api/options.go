package api

import "github.com/okian/intervue/pkg/logger"

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAuthenticator sets how the acting user is resolved.
func WithAuthenticator(a *Authenticator) Option {
	return func(s *Server) {
		if a != nil {
			s.auth = a
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
