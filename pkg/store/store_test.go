package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(16, time.Minute)

	_, ok, err := s.Get(ctx, "ticket")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "ticket", "PGT-100"))

	value, ok, err := s.Get(ctx, "ticket")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "PGT-100", value)

	// overwrite replaces
	require.NoError(t, s.Put(ctx, "ticket", "PGT-200"))
	value, _, _ = s.Get(ctx, "ticket")
	assert.Equal(t, "PGT-200", value)

	require.NoError(t, s.Remove(ctx, "ticket"))
	_, ok, _ = s.Get(ctx, "ticket")
	assert.False(t, ok)

	// removing an absent key is a no-op
	require.NoError(t, s.Remove(ctx, "ticket"))
}

func TestMemoryStoreEvictsByCapacity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, 0)

	require.NoError(t, s.Put(ctx, "a", "1"))
	require.NoError(t, s.Put(ctx, "b", "2"))
	require.NoError(t, s.Put(ctx, "c", "3"))

	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.Get(ctx, "a")
	assert.False(t, ok, "oldest entry should be evicted")
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(16, 50*time.Millisecond)

	require.NoError(t, s.Put(ctx, "short", "lived"))
	_, ok, _ := s.Get(ctx, "short")
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok, _ := s.Get(ctx, "short")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}

func TestGetWaitImmediateHit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(16, time.Minute)
	require.NoError(t, s.Put(ctx, "k", "v"))

	value, ok, err := GetWait(ctx, s, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestGetWaitLateWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(16, time.Minute)

	go func() {
		time.Sleep(3 * DefaultPollInterval)
		s.Put(ctx, "pgt:IOU-1", "PGT-9")
	}()

	value, ok, err := GetWait(ctx, s, "pgt:IOU-1", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "PGT-9", value)
}

func TestGetWaitTimeout(t *testing.T) {
	s := NewMemoryStore(16, time.Minute)

	start := time.Now()
	_, ok, err := GetWait(context.Background(), s, "never", 150*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestGetWaitRequiresPositiveTimeout(t *testing.T) {
	s := NewMemoryStore(16, time.Minute)

	_, _, err := GetWait(context.Background(), s, "k", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive timeout")

	_, _, err = GetWait(context.Background(), s, "k", -time.Second)
	require.Error(t, err)
}

func TestGetWaitContextCancel(t *testing.T) {
	s := NewMemoryStore(16, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(2 * DefaultPollInterval)
		cancel()
	}()

	_, _, err := GetWait(ctx, s, "never", 5*time.Second)
	require.ErrorIs(t, err, context.Canceled)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, unavailable("redis", "get", errors.New("connection refused"))
}
func (failingStore) Put(context.Context, string, string) error { return nil }
func (failingStore) Remove(context.Context, string) error      { return nil }
func (failingStore) CleanUp(context.Context) error             { return nil }

func TestGetWaitSurfacesStoreErrors(t *testing.T) {
	_, _, err := GetWait(context.Background(), failingStore{}, "k", time.Second)
	require.Error(t, err)

	var unavail *StoreUnavailableError
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, "redis", unavail.Backend)
	assert.Equal(t, "get", unavail.Op)
}

func TestStoreUnavailableError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := unavailable("redis", "put", cause)

	assert.Equal(t, "redis store unavailable during put: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestStoreInterfaceCompliance(t *testing.T) {
	for name, s := range map[string]Store{
		"memory": NewMemoryStore(4, time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				key := fmt.Sprintf("k%d", i)
				require.NoError(t, s.Put(ctx, key, "v"))
			}
			require.NoError(t, s.CleanUp(ctx))
		})
	}
}
