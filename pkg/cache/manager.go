package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisLayer = "redis"

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis  *redis.Client
	prefix string
}

var _ Store = (*Manager)(nil)

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis:  redisClient,
		prefix: "pokedex:",
	}
}

// WithPrefix returns a manager sharing the client but namespacing all keys
// under prefix.
func (m *Manager) WithPrefix(prefix string) *Manager {
	return &Manager{redis: m.redis, prefix: prefix}
}

func (m *Manager) key(key string) string {
	return m.prefix + key
}

// Get retrieves the value stored under key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.redis.Get(ctx, m.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues(redisLayer).Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues(redisLayer, "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.WithLabelValues(redisLayer).Inc()
	return data, nil
}

// Set stores value with the given TTL.
// The key is removed by Redis itself when it expires.
func (m *Manager) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	if err := m.redis.Set(ctx, m.key(key), value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues(redisLayer, "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, m.key(key)).Err(); err != nil {
		CacheErrors.WithLabelValues(redisLayer, "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// TTL returns the remaining lifetime of key, or ErrCacheMiss if it is gone.
func (m *Manager) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := m.redis.TTL(ctx, m.key(key)).Result()
	if err != nil {
		CacheErrors.WithLabelValues(redisLayer, "ttl").Inc()
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	// -2: key does not exist
	if ttl == -2 {
		return 0, ErrCacheMiss
	}
	return ttl, nil
}
