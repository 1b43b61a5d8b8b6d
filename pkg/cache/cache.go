// Package cache stores serialized layout reports between runs.
//
// A layout is cheap to compute but the CLI is often pointed at the same
// scene over and over (watch mode, editor integrations, CI checks). Results
// are keyed by the scene's content hash plus every option that changes the
// outcome, so a hit is always safe to reuse.
//
// Three backends are provided:
//   - [NullCache]: never stores anything
//   - [FileCache]: one file per entry under a local directory
//   - [RedisCache]: a shared Redis instance, for teams running the CLI in CI
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultTTL is how long results stay cached when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value stored under key. hit is false on a miss,
	// including for expired entries.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero keeps the entry until it is
	// deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// GetJSON decodes the value stored under key into v. It returns
// ErrCacheMiss when there is no entry.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, v)
}

// SetJSON stores v under key as JSON and returns the encoded size.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(data), c.Set(ctx, key, data, ttl)
}
