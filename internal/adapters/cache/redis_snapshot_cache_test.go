package cache

import (
	"context"
	"customs-analytics-service/internal/ports"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisSnapshotCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSnapshotCache(client, ttl), srv
}

func TestRedisSnapshotCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "analysis:latest", []byte(`{"run_id":"run-1"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	payload, err := c.Get(ctx, "analysis:latest")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(payload) != `{"run_id":"run-1"}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestRedisSnapshotCacheMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	_, err := c.Get(context.Background(), "analysis:latest")
	if !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestRedisSnapshotCacheTTL(t *testing.T) {
	c, srv := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "analysis:latest", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "analysis:latest")
	if !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss after TTL", err)
	}
}

func TestRedisSnapshotCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "analysis:latest", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Invalidate(ctx, "analysis:latest"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	_, err := c.Get(ctx, "analysis:latest")
	if !errors.Is(err, ports.ErrCacheMiss) {
		t.Fatalf("err = %v, want ErrCacheMiss after invalidate", err)
	}

	// Invalidating an absent key is not an error.
	if err := c.Invalidate(ctx, "analysis:latest"); err != nil {
		t.Fatalf("invalidate absent key: %v", err)
	}
}
