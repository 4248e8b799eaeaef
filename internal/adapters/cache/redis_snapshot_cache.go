package cache

import (
	"context"
	"customs-analytics-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed implementation of the ResultCache port. Snapshots are
// stored as opaque payloads under their key and expire after the TTL,
// so a stale analysis never outlives its freshness window.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

// Retrieve the cached payload for key, or ports.ErrCacheMiss.
func (c *RedisSnapshotCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot cache: get %q: %w", key, err)
	}
	return payload, nil
}

// Store payload under key with the configured TTL.
func (c *RedisSnapshotCache) Put(ctx context.Context, key string, payload []byte) error {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("snapshot cache: put %q: %w", key, err)
	}
	return nil
}

// Drop the cached payload for key, if any.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("snapshot cache: invalidate %q: %w", key, err)
	}
	return nil
}
