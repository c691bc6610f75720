package redis

import (
	"context"
	"encoding/json"
	"idea-review-platform/internal/logger"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a small versioned-key cache. List payloads are keyed by a
// per-user version counter; bumping the counter invalidates every cached
// page at once without scanning keys. A nil client degrades to no-ops so
// the service runs without Redis.
type Cache struct {
	client *redis.Client
}

func NewCache(address string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Log.Warn().Err(err).Msg("Redis not available. Running without cache.")
		return &Cache{client: nil}
	}

	logger.Log.Info().Msg("Redis connected successfully.")
	return &Cache{client: client}
}

// Get unmarshals the cached value into dest. Returns false on miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// GetVersion returns the current version counter for a key, 0 if unset.
func (c *Cache) GetVersion(ctx context.Context, key string) int64 {
	if c.client == nil {
		return 0
	}
	v, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion bumps the version counter, invalidating dependent keys.
func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		logger.Log.Warn().Err(err).Str("key", key).Msg("cache version bump failed")
	}
}

func (c *Cache) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
