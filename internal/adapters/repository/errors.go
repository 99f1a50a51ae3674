package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrInvalidSession = errors.New("session without user id")
	ErrInvalidLimit   = errors.New("invalid journal limit")
	ErrInvalidEntry   = errors.New("journal entry without id or user")
)
