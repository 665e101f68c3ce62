package store

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxEntries = 10000

// MemoryStore is an in-process expiring store. It is safe for concurrent
// use but shares nothing across server instances: deployments where the
// provider callback can land on a different instance need RedisStore.
type MemoryStore struct {
	cache *lru.LRU[string, string]
}

// NewMemoryStore creates a memory store evicting entries after ttl. A zero
// ttl disables time-based eviction and relies on LRU pressure only.
func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &MemoryStore{
		cache: lru.NewLRU[string, string](maxEntries, nil, ttl),
	}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := s.cache.Get(key)
	return value, ok, nil
}

// Put stores value under key.
func (s *MemoryStore) Put(_ context.Context, key, value string) error {
	s.cache.Add(key, value)
	return nil
}

// Remove deletes the entry for key.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// CleanUp is a no-op; the expirable LRU evicts on its own.
func (s *MemoryStore) CleanUp(_ context.Context) error {
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
