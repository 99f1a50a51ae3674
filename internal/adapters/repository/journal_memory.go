package repository

import (
	"context"
	"sync"

	"github.com/okian/intervue/internal/domain/model"
)

// MemoryJournal keeps the newest entries in a fixed-size ring.
type MemoryJournal struct {
	mu       sync.RWMutex
	ring     []model.JournalEntry
	next     int
	full     bool
	capacity int
}

// NewMemoryJournal creates a ring journal.
func NewMemoryJournal(opts ...JournalOption) *MemoryJournal {
	j := &MemoryJournal{capacity: 10000}
	for _, opt := range opts {
		opt(j)
	}
	j.ring = make([]model.JournalEntry, j.capacity)
	return j
}

func (j *MemoryJournal) Name() string { return "memory" }

func (j *MemoryJournal) Append(ctx context.Context, e model.JournalEntry) error {
	if e.ID == "" || e.UserID == "" {
		return ErrInvalidEntry
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ring[j.next] = e
	j.next = (j.next + 1) % j.capacity
	if j.next == 0 {
		j.full = true
	}
	return nil
}

func (j *MemoryJournal) Recent(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	n := j.next
	if j.full {
		n = j.capacity
	}
	out := make([]model.JournalEntry, 0, min(limit, n))
	for i := 1; i <= n && len(out) < limit; i++ {
		e := j.ring[(j.next-i+j.capacity)%j.capacity]
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
