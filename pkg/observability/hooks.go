// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph mutations, path searches, and file loading.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries. The Prometheus adapter lives
// in the promhooks subpackage so that importing observability pulls in no
// metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGraphHooks(promhooks.New(prometheus.DefaultRegisterer))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	path, err := search()
//	observability.Graph().OnPathSearch(ctx, from, to, len(path), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Graph Hooks
// =============================================================================

// GraphHooks receives events from the model graph.
type GraphHooks interface {
	// Model events
	OnModelAdded(ctx context.Context, key string)
	OnModelRemoved(ctx context.Context, key string)

	// Transformation events
	OnTransformationAdded(ctx context.Context, id, source, target string)
	OnTransformationRemoved(ctx context.Context, id, source, target string)

	// OnPathSearch records a completed path search. hops is the length of
	// the path found, zero when err is non-nil.
	OnPathSearch(ctx context.Context, source, target string, hops int, duration time.Duration, err error)
}

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the transformation engine.
type EngineHooks interface {
	// OnFileLoaded records a transformation file load with the number of
	// descriptions it contained.
	OnFileLoaded(ctx context.Context, path string, count int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGraphHooks is a no-op implementation of GraphHooks.
type NoopGraphHooks struct{}

func (NoopGraphHooks) OnModelAdded(context.Context, string)                           {}
func (NoopGraphHooks) OnModelRemoved(context.Context, string)                         {}
func (NoopGraphHooks) OnTransformationAdded(context.Context, string, string, string)   {}
func (NoopGraphHooks) OnTransformationRemoved(context.Context, string, string, string) {}
func (NoopGraphHooks) OnPathSearch(context.Context, string, string, int, time.Duration, error) {
}

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnFileLoaded(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	graphHooks  GraphHooks  = NoopGraphHooks{}
	engineHooks EngineHooks = NoopEngineHooks{}
	hooksMu     sync.RWMutex
)

// SetGraphHooks registers custom graph hooks.
// This should be called once at application startup before any graph is created.
func SetGraphHooks(h GraphHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		graphHooks = h
	}
}

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any file is loaded.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return graphHooks
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	graphHooks = NoopGraphHooks{}
	engineHooks = NoopEngineHooks{}
}
