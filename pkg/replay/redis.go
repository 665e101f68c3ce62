package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gatehouse-auth/gatehouse/pkg/store"
)

// DefaultRedisPrefix namespaces replay keys away from other stores sharing
// the same Redis.
const DefaultRedisPrefix = "gatehouse:replay"

// RedisGuard is a cluster-wide replay cache. SETNX makes RememberOnce atomic
// so two instances racing on the same artifact agree on a single winner.
type RedisGuard struct {
	client *redis.Client
	prefix string
}

// NewRedisGuard creates a replay guard on an existing Redis client. An empty
// prefix uses DefaultRedisPrefix.
func NewRedisGuard(client *redis.Client, prefix string) *RedisGuard {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisGuard{client: client, prefix: prefix}
}

func (g *RedisGuard) key(id string) string {
	return fmt.Sprintf("%s:%s", g.prefix, id)
}

// Seen reports whether id was remembered and has not yet expired.
func (g *RedisGuard) Seen(ctx context.Context, id string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(id)).Result()
	if err != nil {
		return false, &store.StoreUnavailableError{Backend: "redis", Op: "seen", Err: err}
	}
	return n > 0, nil
}

// Remember records id for ttl.
func (g *RedisGuard) Remember(ctx context.Context, id string, ttl time.Duration) error {
	if err := g.client.Set(ctx, g.key(id), "1", ttl).Err(); err != nil {
		return &store.StoreUnavailableError{Backend: "redis", Op: "remember", Err: err}
	}
	return nil
}

// RememberOnce records id for ttl and reports whether it was fresh. Redis
// expires the entry itself, so the TTL check needs no clock here.
func (g *RedisGuard) RememberOnce(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	fresh, err := g.client.SetNX(ctx, g.key(id), "1", ttl).Result()
	if err != nil {
		return false, &store.StoreUnavailableError{Backend: "redis", Op: "remember_once", Err: err}
	}
	return fresh, nil
}

// Ping verifies the backend is reachable. Used by health checks.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
