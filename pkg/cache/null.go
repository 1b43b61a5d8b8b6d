package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. The CLI uses it for --no-cache and when no
// cache directory can be determined, so every resolve recomputes.
type NullCache struct{}

// NewNullCache returns a cache on which every Get misses.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always misses.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
