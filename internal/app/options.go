package service

import (
	"time"

	"github.com/okian/intervue/internal/adapters/repository"
	"github.com/okian/intervue/internal/domain/inflight"
	"github.com/okian/intervue/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionStore selects where sessions live.
func WithSessionStore(store repository.SessionStore) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithGuard replaces the in-flight guard.
func WithGuard(g inflight.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithJournal routes submissions into q and serves activity reads from r.
func WithJournal(q JournalQueue, r ActivityReader) Option {
	return func(s *Service) {
		s.queue = q
		s.journal = r
	}
}

// WithPageLimit sets the default page size of list reads.
func WithPageLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.pageLimit = limit
		}
	}
}

// WithRemoteTimeout bounds each mutating remote call.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.remoteTimeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDs replaces the journal entry id generator.
func WithIDs(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}
