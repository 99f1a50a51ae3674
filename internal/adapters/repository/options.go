package repository

import "time"

// MemoryOption applies a configuration option to the MemorySessionStore.
type MemoryOption func(*MemorySessionStore)

// WithSessionTTL expires sessions idle for longer than ttl. Zero keeps them
// forever.
func WithSessionTTL(ttl time.Duration) MemoryOption {
	return func(s *MemorySessionStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often expired sessions are evicted.
func WithSweepInterval(interval time.Duration) MemoryOption {
	return func(s *MemorySessionStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemorySessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// RedisOption applies a configuration option to the RedisSessionStore.
type RedisOption func(*RedisSessionStore)

// WithRedisTTL sets the expiry of stored sessions. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisSessionStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the session keys.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisSessionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// JournalOption applies a configuration option to the MemoryJournal.
type JournalOption func(*MemoryJournal)

// WithJournalCapacity bounds the in-memory journal ring.
func WithJournalCapacity(n int) JournalOption {
	return func(j *MemoryJournal) {
		if n > 0 {
			j.capacity = n
		}
	}
}
