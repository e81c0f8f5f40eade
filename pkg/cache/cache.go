// Package cache provides byte caches for layouts and rendered artifacts.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for several server processes
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer]. The default keyer hashes every input that
// affects the cached value, so changing a layout option or a style color
// never serves a stale entry. [ScopedKeyer] prefixes keys, which the HTTP
// server uses to keep per-session frames apart.
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes. Layouts and artifacts are pure functions of their keys,
// so they only expire to bound disk and memory use.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
	TTLFrame    = time.Hour
)
