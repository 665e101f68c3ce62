package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds Redis backend configuration.
type RedisConfig struct {
	URL        string
	Password   string
	DB         int
	MaxRetries int
	PoolSize   int

	// Prefix namespaces keys so several stores can share one Redis.
	Prefix string

	// TTL applied to every entry. Zero disables expiry, which is almost
	// never what you want for provider-issued secrets.
	TTL time.Duration
}

// RedisStore shares entries across server instances. Required whenever
// more than one instance can receive the provider callback that writes a
// secret another instance will read.
type RedisStore struct {
	client *redis.Client
	config RedisConfig
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.DB >= 0 {
		opts.DB = config.DB
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}
	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if config.Prefix == "" {
		config.Prefix = "gatehouse:store"
	}

	return &RedisStore{client: client, config: config}, nil
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.config.Prefix, key)
}

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, unavailable("redis", "get", err)
	}
	return value, true, nil
}

// Put stores value under key with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.config.TTL).Err(); err != nil {
		return unavailable("redis", "put", err)
	}
	return nil
}

// Remove deletes the entry for key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return unavailable("redis", "remove", err)
	}
	return nil
}

// CleanUp is a no-op; Redis expires entries by TTL.
func (s *RedisStore) CleanUp(_ context.Context) error {
	return nil
}

// Ping verifies the backend is reachable. Used by health checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
