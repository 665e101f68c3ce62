package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedisStore(RedisConfig{
		URL: "redis://" + mr.Addr(),
		DB:  -1,
		TTL: ttl,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, mr
}

func TestRedisStorePutGetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := setupRedisStore(t, time.Minute)

	_, ok, err := s.Get(ctx, "nonce")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "nonce", "n-123"))

	value, ok, err := s.Get(ctx, "nonce")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "n-123", value)

	require.NoError(t, s.Remove(ctx, "nonce"))
	_, ok, _ = s.Get(ctx, "nonce")
	assert.False(t, ok)
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedisStore(t, time.Minute)

	require.NoError(t, s.Put(ctx, "abc", "v"))
	assert.True(t, mr.Exists("gatehouse:store:abc"))
}

func TestRedisStoreCustomPrefix(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedisStore(RedisConfig{
		URL:    "redis://" + mr.Addr(),
		DB:     -1,
		Prefix: "tenant-a",
		TTL:    time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Put(ctx, "abc", "v"))
	assert.True(t, mr.Exists("tenant-a:abc"))
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedisStore(t, 30*time.Second)

	require.NoError(t, s.Put(ctx, "short", "lived"))

	mr.FastForward(time.Minute)

	_, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := setupRedisStore(t, time.Minute)

	mr.Close()

	_, _, err := s.Get(ctx, "k")
	var unavail *StoreUnavailableError
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, "redis", unavail.Backend)

	err = s.Put(ctx, "k", "v")
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, "put", unavail.Op)
}

func TestNewRedisStoreInvalidURL(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{URL: "not-a-url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis URL")
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{URL: "redis://127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisStorePing(t *testing.T) {
	s, mr := setupRedisStore(t, time.Minute)

	assert.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
