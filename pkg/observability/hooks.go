// Package observability provides hooks for instrumenting builds.
//
// Libraries emit events through the registered hooks; consumers register an
// implementation once at startup. The default hooks do nothing, so packages
// that emit events carry no dependency on any metrics or tracing backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	observability.SetBuildHooks(recorder)
//
// The builder emits events around each build:
//
//	observability.Build().OnBuildStart(ctx, doc, id)
//	// ... generate, compile, install ...
//	observability.Build().OnBuildComplete(ctx, doc, id, pages, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from document builds.
type BuildHooks interface {
	// OnBuildStart records the start of a compile build.
	OnBuildStart(ctx context.Context, doc, buildID string)

	// OnCompileComplete records the end of the engine run.
	OnCompileComplete(ctx context.Context, doc, engine string, duration time.Duration, err error)

	// OnBuildComplete records the end of a compile build. pages is zero
	// when err is set.
	OnBuildComplete(ctx context.Context, doc, buildID string, pages int, duration time.Duration, err error)
}

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, string) {}
func (NoopBuildHooks) OnCompileComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks BuildHooks = NoopBuildHooks{}
	hooksMu    sync.RWMutex
)

// SetBuildHooks registers custom build hooks. A nil h is ignored.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Reset restores the no-op defaults. Tests use it to undo registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
}
