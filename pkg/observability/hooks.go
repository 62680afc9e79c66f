// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through hook interfaces whose default
// implementations do nothing. Binaries register real implementations at
// startup, so the core packages never import a metrics backend:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewPrometheusHooks(reg))
//	    // ... run application
//	}
//
// Library code calls the hooks around each stage:
//
//	observability.Pipeline().OnCompileStart(ctx, len(text))
//	m, err := compiler.Compile(text)
//	observability.Pipeline().OnCompileComplete(ctx, len(m.Elements), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the compile and layout pipeline.
type PipelineHooks interface {
	// OnCompileStart and OnCompileComplete bracket one notation compile.
	OnCompileStart(ctx context.Context, textSize int)
	OnCompileComplete(ctx context.Context, elementCount int, duration time.Duration, err error)

	// OnLayoutStart and OnLayoutComplete bracket one layout. orphanCount is
	// the number of overlay records that matched nothing.
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, orphanCount int, duration time.Duration, err error)

	// OnOverlayMove records a manual offset written to the meta overlay.
	OnOverlayMove(ctx context.Context, id string, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
// keyType is "model" or "layout".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnResponse records a served request. route is the matched pattern,
	// not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnCompileStart(context.Context, int)                          {}
func (NoopPipelineHooks) OnCompileComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnOverlayMove(context.Context, string, error)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// registry holds the hooks the running binary registered.
type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var global = newRegistry()

func newRegistry() *registry {
	return &registry{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	}
}

func (r *registry) update(fn func(*registry)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

func (r *registry) read() (PipelineHooks, CacheHooks, HTTPHooks) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pipeline, r.cache, r.http
}

// SetPipelineHooks registers pipeline hooks. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		global.update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		global.update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		global.update(func(r *registry) { r.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	p, _, _ := global.read()
	return p
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	_, c, _ := global.read()
	return c
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	_, _, h := global.read()
	return h
}

// Reset restores the no-op hooks. Tests call it to isolate global state.
func Reset() {
	fresh := newRegistry()
	global.update(func(r *registry) {
		r.pipeline, r.cache, r.http = fresh.pipeline, fresh.cache, fresh.http
	})
}
