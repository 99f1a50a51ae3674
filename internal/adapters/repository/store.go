// Package repository persists per-user engine sessions and the activity
// journal.
package repository

import (
	"context"

	"github.com/okian/intervue/internal/domain/model"
)

// SessionStore holds the private session of every acting user.
type SessionStore interface {
	// Load returns userID's session, or a fresh empty one when none exists.
	Load(ctx context.Context, userID string) (*model.Session, error)
	// Save replaces userID's session.
	Save(ctx context.Context, s *model.Session) error
	// Delete drops userID's session.
	Delete(ctx context.Context, userID string) error
	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}

// Journal is an append-only activity log.
type Journal interface {
	Append(ctx context.Context, e model.JournalEntry) error
	// Recent returns userID's newest entries first, at most limit of them.
	Recent(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error)
	Name() string
}
