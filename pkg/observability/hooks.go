// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about group operations and document store access.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which avoids import cycles
// and keeps the core packages free of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGroupHooks(&myGroupHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Groups().OnGroupOp(observability.OpMoveGroup, "roads", 4, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Group Hooks
// =============================================================================

// Op names a mutating group operation.
type Op string

// Group operations reported through [GroupHooks].
const (
	OpAddGroup             Op = "add_group"
	OpAddLayerToGroup      Op = "add_layer_to_group"
	OpMoveGroup            Op = "move_group"
	OpRemoveGroup          Op = "remove_group"
	OpMoveLayerToGroup     Op = "move_layer_to_group"
	OpRemoveLayerFromGroup Op = "remove_layer_from_group"
)

// GroupHooks receives events from group operations.
//
// Group operations are synchronous and take no context, so neither does the hook.
type GroupHooks interface {
	// OnGroupOp records a completed operation. hostCalls counts the insert,
	// move and remove calls issued against the host (0 for metadata-only ops).
	OnGroupOp(op Op, groupID string, hostCalls int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document store operations.
type StoreHooks interface {
	// OnLoad records a document read. found is false on a miss.
	OnLoad(ctx context.Context, backend, name string, found bool, duration time.Duration, err error)

	// OnSave records a document write.
	OnSave(ctx context.Context, backend, name string, size int, duration time.Duration, err error)

	// OnDelete records a document deletion.
	OnDelete(ctx context.Context, backend, name string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGroupHooks is a no-op implementation of GroupHooks.
type NoopGroupHooks struct{}

func (NoopGroupHooks) OnGroupOp(Op, string, int, time.Duration, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error)  {}
func (NoopStoreHooks) OnDelete(context.Context, string, string, error)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	groupHooks GroupHooks = NoopGroupHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetGroupHooks registers custom group hooks.
// This should be called once at application startup before any group operations.
func SetGroupHooks(h GroupHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		groupHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Groups returns the registered group hooks.
func Groups() GroupHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return groupHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	groupHooks = NoopGroupHooks{}
	storeHooks = NoopStoreHooks{}
}
