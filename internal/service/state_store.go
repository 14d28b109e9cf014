package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore keeps short-lived single-use values: OAuth state parameters and
// the one-time codes the web client trades for a session token.
type StateStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// Take returns and deletes the value. ok is false when the key is
	// missing or expired.
	Take(ctx context.Context, key string) (value string, ok bool, err error)
}

// NewStateStore uses Redis when a client is available and process memory
// otherwise.
func NewStateStore(rdb *redis.Client, prefix string) StateStore {
	if rdb == nil {
		return NewMemoryStateStore()
	}
	return &RedisStateStore{rdb: rdb, prefix: prefix}
}

// RedisStateStore stores values with SET EX and consumes them with GETDEL,
// so a value is handed out at most once across all server instances.
type RedisStateStore struct {
	rdb    *redis.Client
	prefix string
}

func (s *RedisStateStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStateStore) Take(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.GetDel(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

type memoryEntry struct {
	value string
	exp   time.Time
}

// MemoryStateStore is the single-instance fallback.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemoryStateStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !e.exp.After(now) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{value: value, exp: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Take(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, key)
	if !e.exp.After(s.now()) {
		return "", false, nil
	}
	return e.value, true, nil
}
