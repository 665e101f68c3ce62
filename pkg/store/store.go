package store

import (
	"context"
	"fmt"
	"time"
)

// Store is a key/value store for short-lived provider-issued secrets.
// Implementations must be safe for concurrent use; entries for unrelated
// sessions never interfere.
type Store interface {
	// Get returns the value stored under key. The second return reports
	// whether the key was present; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Remove deletes the entry for key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error

	// CleanUp evicts stale entries. Backends with native TTL eviction
	// implement this as a no-op; it exists so that custom backends have an
	// explicit hook instead of relying on finalizers.
	CleanUp(ctx context.Context) error
}

// DefaultPollInterval is how often GetWait re-reads the store while waiting
// for an asynchronous write.
const DefaultPollInterval = 50 * time.Millisecond

// GetWait polls the store until the key appears or the timeout elapses.
// The provider callback that writes the value arrives on an independent
// connection with no ordering guarantee, so the validation path blocks here
// rather than assuming the write already happened. The timeout is mandatory;
// a provider that never calls back must not hang the request.
func GetWait(ctx context.Context, s Store, key string, timeout time.Duration) (string, bool, error) {
	if timeout <= 0 {
		return "", false, fmt.Errorf("store: GetWait requires a positive timeout")
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	for {
		value, ok, err := s.Get(ctx, key)
		if err != nil || ok {
			return value, ok, err
		}
		if time.Now().After(deadline) {
			return "", false, nil
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-ticker.C:
		}
	}
}
