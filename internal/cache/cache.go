package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Invalidator is the slice of the cache that mutating services depend on.
// Mutations only ever invalidate; they never read or write cached values.
type Invalidator interface {
	InvalidateTags(ctx context.Context, tags ...string) error
}

// Cache is a Redis-backed key-value cache with per-entry TTL and a tag-to-key
// index. Invalidating a tag removes every key registered under it.
type Cache struct {
	client *redis.Client
	prefix string
}

// New creates a cache on top of the given Redis client.
func New(client *redis.Client) *Cache {
	return &Cache{client: client, prefix: "cache:"}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

func (c *Cache) tagKey(tag string) string {
	return c.prefix + "tag:" + tag
}

// Get loads a cached entry into dest. It returns false when the key is
// missing or expired.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key with the given TTL and registers the key under
// each tag. The tag index outlives the entry so a later invalidation of a tag
// whose entries already expired is a cheap no-op.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.key(key), data, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, c.tagKey(tag), c.key(key))
		pipe.Expire(ctx, c.tagKey(tag), 24*time.Hour)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// InvalidateTags removes every key registered under the given tags.
func (c *Cache) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		keys, err := c.client.SMembers(ctx, c.tagKey(tag)).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("cache invalidate tag %s: %w", tag, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache invalidate tag %s: %w", tag, err)
			}
		}
		if err := c.client.Del(ctx, c.tagKey(tag)).Err(); err != nil {
			return fmt.Errorf("cache invalidate tag %s: %w", tag, err)
		}
	}
	return nil
}

// Noop is an Invalidator that does nothing. Used in tests and anywhere the
// cache is not wired.
type Noop struct{}

// InvalidateTags implements Invalidator.
func (Noop) InvalidateTags(ctx context.Context, tags ...string) error { return nil }
