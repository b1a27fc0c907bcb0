package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryCache memoizes review query results in Redis. Every mutating code
// path must call Invalidate before the next read, or stale data is served.
type QueryCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewQueryCache(client *redis.Client, prefix string, ttl time.Duration) *QueryCache {
	return &QueryCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key derives a stable cache key from an arbitrary query descriptor.
func (c *QueryCache) Key(descriptor any) string {
	payload, err := json.Marshal(descriptor)
	if err != nil {
		return fmt.Sprintf("%s:raw:%v", c.prefix, descriptor)
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s:%s", c.prefix, hex.EncodeToString(sum[:16]))
}

// Get unmarshals a cached value into dest. Returns false on miss or when
// Redis is unavailable; callers fall through to the database.
func (c *QueryCache) Get(ctx context.Context, key string, dest any) bool {
	if c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, dest) == nil
}

func (c *QueryCache) Set(ctx context.Context, key string, value any) {
	if c.client == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	c.client.Set(ctx, key, payload, c.ttl)
}

// Invalidate drops every key under this cache's prefix.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
