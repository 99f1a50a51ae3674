// Package inflight rejects a submission while an identical one is still
// running.
package inflight

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// Guard tracks the keys of operations in flight.
type Guard interface {
	// Acquire atomically marks key as running. It returns false when key is
	// already running.
	Acquire(ctx context.Context, key string) bool

	// Release marks key as finished. Releasing an unknown key is a no-op.
	Release(ctx context.Context, key string)

	Size() int64
}

type guard struct {
	mu       sync.Mutex
	running  map[string]struct{}
	capacity int
	size     atomic.Int64
}

// NewGuard creates an in-memory guard.
func NewGuard(opts ...Option) Guard {
	g := &guard{capacity: 64}
	for _, opt := range opts {
		opt(g)
	}
	g.running = make(map[string]struct{}, g.capacity)
	return g
}

func (g *guard) Acquire(ctx context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[key]; ok {
		return false
	}
	g.running[key] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *guard) Release(ctx context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[key]; ok {
		delete(g.running, key)
		g.size.Add(-1)
	}
}

func (g *guard) Size() int64 {
	return g.size.Load()
}

// Key joins an operation name with its identifying parts,
// e.g. Key("bid", userID, interviewID).
func Key(op string, parts ...string) string {
	return op + ":" + strings.Join(parts, ":")
}
