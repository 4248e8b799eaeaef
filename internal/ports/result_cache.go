package ports

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by ResultCache.Get when no snapshot is stored.
var ErrCacheMiss = errors.New("result cache: miss")

// Port: a boundary for caching serialized analysis snapshots.
type ResultCache interface {
	// Retrieve the cached snapshot payload, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Store a snapshot payload under key until the configured TTL expires.
	Put(ctx context.Context, key string, payload []byte) error
	// Drop the cached payload for key, if any.
	Invalidate(ctx context.Context, key string) error
}
