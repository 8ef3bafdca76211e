package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a small JSON key-value cache over Redis. It backs the merged
// catalog lists (featured, bestsellers, new); everything else reads
// Postgres directly. Callers must treat every error as a miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. The returned cache is usable immediately; a dead
// Redis only surfaces as misses on Get and dropped writes on Set.
func New(addr, password string, db int, ttl time.Duration) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: client, ttl: ttl}
}

// Client exposes the underlying Redis client, shared with the rate limiter.
func (c *Cache) Client() *redis.Client {
	return c.client
}

// GetJSON unmarshals the cached value for key into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache decode %q: %w", key, err)
	}
	return nil
}

// SetJSON stores value under key with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Invalidate removes keys, ignoring ones that do not exist.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
