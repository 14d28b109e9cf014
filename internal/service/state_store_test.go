package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStoreSingleUse(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "state:abc", "1", time.Minute))

	v, ok, err := s.Take(ctx, "state:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok, err = s.Take(ctx, "state:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStateStoreExpiry(t *testing.T) {
	s := NewMemoryStateStore()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "code:x", "7", time.Minute))

	now = now.Add(2 * time.Minute)
	_, ok, err := s.Take(ctx, "code:x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStateStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewStateStore(rdb, "oauth:")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "state:abc", "1", time.Minute))
	assert.True(t, mr.Exists("oauth:state:abc"))

	v, ok, err := s.Take(ctx, "state:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok, err = s.Take(ctx, "state:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "code:y", "2", time.Minute))
	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Take(ctx, "code:y")
	require.NoError(t, err)
	assert.False(t, ok)
}
