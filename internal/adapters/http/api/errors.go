package api

import "errors"

// Authentication failures.
var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUser  = errors.New("missing acting user")
)
