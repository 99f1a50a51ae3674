package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/intervue/internal/domain/model"
)

const defaultKeyPrefix = "intervue:session:"

// RedisSessionStore keeps sessions as JSON values with a sliding TTL.
type RedisSessionStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore wraps an existing client.
func NewRedisSessionStore(rdb redis.UniversalClient, opts ...RedisOption) *RedisSessionStore {
	s := &RedisSessionStore{rdb: rdb, prefix: defaultKeyPrefix, ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DialRedis connects to addr, which may be host:port or a redis:// URL, and
// pings it.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	var opt *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{Addr: addr}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Key returns the redis key of userID's session.
func (s *RedisSessionStore) Key(userID string) string {
	return s.prefix + userID
}

func (s *RedisSessionStore) Load(ctx context.Context, userID string) (*model.Session, error) {
	if userID == "" {
		return nil, ErrInvalidSession
	}
	raw, err := s.rdb.Get(ctx, s.Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// corrupt value: treat as miss
		_ = s.rdb.Del(ctx, s.Key(userID)).Err()
		return model.NewSession(userID), nil
	}
	if sess.Interviews == nil {
		sess.Interviews = make(map[string]model.Interview)
	}
	sess.UserID = userID
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.UserID == "" {
		return ErrInvalidSession
	}
	c := sess.Clone()
	c.UpdatedAt = time.Now()
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.Key(sess.UserID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, s.Key(userID)).Err()
}

func (s *RedisSessionStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
