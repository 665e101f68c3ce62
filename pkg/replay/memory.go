package replay

import (
	"context"
	"sync"
	"time"

	dsig "github.com/russellhaering/goxmldsig"
)

// purgeThreshold triggers an opportunistic sweep of expired entries.
const purgeThreshold = 4096

// MemoryGuard is an in-process replay cache. It is explicitly unsafe across
// multiple server instances sharing one identity-provider session: an
// artifact replayed against a different instance would not be detected.
// Use RedisGuard in clustered deployments.
type MemoryGuard struct {
	mu      sync.Mutex
	entries map[string]time.Time
	clock   *dsig.Clock
}

// NewMemoryGuard creates a memory guard. A nil clock uses real time; tests
// inject a fake clock to simulate TTL expiry.
func NewMemoryGuard(clock *dsig.Clock) *MemoryGuard {
	if clock == nil {
		clock = dsig.NewRealClock()
	}
	return &MemoryGuard{
		entries: make(map[string]time.Time),
		clock:   clock,
	}
}

// Seen reports whether id was remembered and has not yet expired.
func (g *MemoryGuard) Seen(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	expiry, ok := g.entries[id]
	if !ok {
		return false, nil
	}
	if g.clock.Now().After(expiry) {
		delete(g.entries, id)
		return false, nil
	}
	return true, nil
}

// Remember records id for ttl.
func (g *MemoryGuard) Remember(_ context.Context, id string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rememberLocked(id, ttl)
	return nil
}

// RememberOnce records id for ttl and reports whether it was fresh.
func (g *MemoryGuard) RememberOnce(_ context.Context, id string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if expiry, ok := g.entries[id]; ok && !g.clock.Now().After(expiry) {
		return false, nil
	}
	g.rememberLocked(id, ttl)
	return true, nil
}

func (g *MemoryGuard) rememberLocked(id string, ttl time.Duration) {
	now := g.clock.Now()
	if len(g.entries) >= purgeThreshold {
		for k, expiry := range g.entries {
			if now.After(expiry) {
				delete(g.entries, k)
			}
		}
	}
	g.entries[id] = now.Add(ttl)
}

// Len returns the number of entries, expired ones included until purged.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}
