// Package observability provides hooks for metrics, tracing, and logging.
//
// The package uses a simple registration pattern: hook interfaces with
// no-op defaults, replaced once at startup by whatever backend the binary
// wires in. Libraries emit events without depending on any observability
// framework, and main decides where they go.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnRefreshStart(ctx, projectID)
//	// ... rebuild ...
//	observability.Engine().OnRefreshComplete(ctx, projectID, nodes, edges, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// EngineHooks receives events from the topology recompute pipeline.
type EngineHooks interface {
	// OnRefreshStart records the start of a snapshot refresh.
	OnRefreshStart(ctx context.Context, projectID string)

	// OnRefreshComplete records a finished refresh with the derived graph
	// size.
	OnRefreshComplete(ctx context.Context, projectID string, nodes, edges int, duration time.Duration, err error)

	// OnLayoutStart records the start of a layout pass.
	OnLayoutStart(ctx context.Context, projectID string, nodes int)

	// OnLayoutComplete records a finished layout pass.
	OnLayoutComplete(ctx context.Context, projectID string, duration time.Duration, err error)

	// OnMutation records a connection create or delete, after the store
	// round trip.
	OnMutation(ctx context.Context, projectID, operation string, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// StoreHooks receives events from store operations.
type StoreHooks interface {
	// OnQuery records a read against a backend collection.
	OnQuery(ctx context.Context, collection string, duration time.Duration, err error)

	// OnWrite records a mutation against a backend collection.
	OnWrite(ctx context.Context, collection, operation string, duration time.Duration, err error)
}

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnRefreshStart(context.Context, string) {}
func (NoopEngineHooks) OnRefreshComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopEngineHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopEngineHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (NoopEngineHooks) OnMutation(context.Context, string, string, error)              {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnQuery(context.Context, string, time.Duration, error)         {}
func (NoopStoreHooks) OnWrite(context.Context, string, string, time.Duration, error) {}

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks. Call once at startup
// before any engine operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Call once at startup before
// any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks. Call once at startup before
// any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults. Primarily for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
