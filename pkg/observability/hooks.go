// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about resolution
// passes, manager triggers and cache operations without the library
// depending on a particular backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolveHooks(&myResolveHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolve().OnResolveStart(ctx, scene, elements)
//	// ... resolve ...
//	observability.Resolve().OnResolveComplete(ctx, scene, placed, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from the scene pipeline.
type ResolveHooks interface {
	OnResolveStart(ctx context.Context, scene string, elements int)
	OnResolveComplete(ctx context.Context, scene string, placed int, duration time.Duration, err error)
}

// =============================================================================
// Manager Hooks
// =============================================================================

// ManagerHooks receives events from layout managers.
type ManagerHooks interface {
	// OnPass records a resolution pass and what triggered it
	// ("elements", "resize", "scroll", "refresh").
	OnPass(trigger string, placed int, duration time.Duration)

	// OnSkip records a trigger that did not need a pass.
	OnSkip(trigger string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolveStart(context.Context, string, int) {}
func (NoopResolveHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {
}

// NoopManagerHooks is a no-op implementation of ManagerHooks.
type NoopManagerHooks struct{}

func (NoopManagerHooks) OnPass(string, int, time.Duration) {}
func (NoopManagerHooks) OnSkip(string)                     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolveHooks ResolveHooks = NoopResolveHooks{}
	managerHooks ManagerHooks = NoopManagerHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetManagerHooks registers custom manager hooks.
func SetManagerHooks(h ManagerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		managerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Manager returns the registered manager hooks.
func Manager() ManagerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return managerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolveHooks = NoopResolveHooks{}
	managerHooks = NoopManagerHooks{}
	cacheHooks = NoopCacheHooks{}
}
