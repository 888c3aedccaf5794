// Package cachemanager provides build-scoped caches keyed by strings.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a TTL cache. Implementations must be safe for concurrent use.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	Len() int
}
