// Package cache provides a small byte-oriented cache abstraction.
//
// The engine uses it for two things: short-TTL caching of part-type
// suggestion lookups (the remote suggestion index is not stable over time,
// so TTLs stay short) and CLI-side persistence of the marketplace session
// credential between invocations.
//
// Backends:
//   - MemoryCache: in-process, for servers and tests
//   - FileCache: on-disk, for CLI usage
//   - NullCache: disabled caching
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss;
	// expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
