// Package cache stores computed weight tables and rendered artifacts.
//
// Every backend implements [Cache], a byte-oriented key/value store with
// optional per-entry expiry:
//
//   - [FileCache]: one file per entry under a directory (CLI default)
//   - [MemoryCache]: bounded in-process LRU (API server default)
//   - [RedisCache]: shared cache for multi-instance deployments
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] from a content hash of the input plus the
// options that affect the output, so a changed graph or policy never reads a
// stale entry.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values by entry kind.
const (
	// TTLWeights applies to weight tables. They are a pure function of
	// their key, so the TTL only bounds disk usage.
	TTLWeights = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered diagrams.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a key/value store for serialized results.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero on Set means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
