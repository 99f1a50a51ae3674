package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/metrics"
)

type sessionEntry struct {
	session *model.Session
	touched time.Time
}

// MemorySessionStore keeps sessions in process. Stored sessions are copied
// on every load and save so callers never share state.
type MemorySessionStore struct {
	mu            sync.RWMutex
	sessions      map[string]sessionEntry
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemorySessionStore builds the store and, when a TTL is set, starts the
// background sweeper bound to ctx.
func NewMemorySessionStore(ctx context.Context, opts ...MemoryOption) *MemorySessionStore {
	s := &MemorySessionStore{
		sessions:      make(map[string]sessionEntry),
		sweepInterval: time.Minute,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		s.startSweeper(ctx)
	}
	metrics.UpdateActiveSessions(0)
	return s
}

func (s *MemorySessionStore) Load(ctx context.Context, userID string) (*model.Session, error) {
	if userID == "" {
		return nil, ErrInvalidSession
	}
	s.mu.RLock()
	e, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return model.NewSession(userID), nil
	}
	return e.session.Clone(), nil
}

func (s *MemorySessionStore) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.UserID == "" {
		return ErrInvalidSession
	}
	now := s.now()
	c := sess.Clone()
	c.UpdatedAt = now
	s.mu.Lock()
	s.sessions[sess.UserID] = sessionEntry{session: c, touched: now}
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateActiveSessions(n)
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateActiveSessions(n)
	return nil
}

func (s *MemorySessionStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Sweep evicts expired sessions and returns how many were removed.
func (s *MemorySessionStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateActiveSessions(n)
	return removed
}

// Close stops the sweeper.
func (s *MemorySessionStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemorySessionStore) expired(e sessionEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.touched) > s.ttl
}

func (s *MemorySessionStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
