// Package rediscache stores routing directions in Redis so several API
// replicas share one memo of coordinate pairs to provider answers.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tripfare/tripfare/internal/routing"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "tripfare:directions:"

// Cache is a routing.Cache backed by Redis.
type Cache struct {
	client *redis.Client
	prefix string
}

var _ routing.Cache = (*Cache)(nil)

// New creates a Redis-backed cache. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix}
}

// Get returns the cached entry for key.
func (c *Cache) Get(ctx context.Context, key string) (*routing.CacheEntry, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var entry routing.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &entry, true, nil
}

// Set stores entry with retention as the Redis TTL.
func (c *Cache) Set(ctx context.Context, key string, entry *routing.CacheEntry, retention time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, retention).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
