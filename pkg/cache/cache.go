// Package cache provides the byte-oriented caches nugraph keeps registry
// metadata in.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries on disk, the CLI default
//   - [RedisCache]: a shared Redis server, for `nugraph serve` fleets
//   - [NullCache]: never stores anything (--no-cache)
//
// Entries that cannot be decoded are removed and reported as misses, so a
// corrupted cache never fails a resolution.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
