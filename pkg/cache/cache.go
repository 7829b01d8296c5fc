// Package cache stores derived artifacts: normalized datasets, computed
// layouts and rendered output.
//
// Entries are opaque byte slices addressed by string keys built with a
// [Keyer]. Three backends implement [Cache]:
//
//   - [FileCache] keeps one JSON file per entry, for the CLI.
//   - [RedisCache] shares entries between server instances.
//   - [NullCache] stores nothing, for tests and --no-cache.
//
// A miss is reported by the boolean result of Get, never as an error.
package cache

import (
	"context"
	"time"
)

// Default lifetimes per artifact kind.
const (
	TTLDataset  = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is
	// reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
