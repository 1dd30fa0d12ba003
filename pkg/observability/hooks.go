// Package observability lets the pipeline, the render cache and the HTTP
// server report events without depending on a logging or metrics backend.
//
// Three hook sets exist, one per event source. Each defaults to a no-op and is
// replaced process-wide at startup; the CLI installs [LogHooks] in verbose
// mode:
//
//	observability.NewLogHooks(logger).Register()
//
// Emitters fetch the current set for every event:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageFilter)
//	filtered := transform.Filter(g, rules)
//	observability.Pipeline().OnStageComplete(ctx, observability.StageFilter,
//	    filtered.NodeCount(), filtered.EdgeCount(), time.Since(start), nil)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Stage names passed to [PipelineHooks], in execution order.
const (
	StageParse    = "parse"
	StageFilter   = "filter"
	StageAnnotate = "annotate"
	StageEmit     = "emit"
)

// PipelineHooks observes Parse, Filter, Annotate and Emit, and Graphviz
// renders of the emitted DOT.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage string)
	// OnStageComplete reports the size of the graph the stage produced.
	// nodes and edges are zero when err is set.
	OnStageComplete(ctx context.Context, stage string, nodes, edges int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks observes render cache lookups. keyType names the kind of entry
// (currently always "artifact").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks observes requests handled by the server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string)                                  {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error)   {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// hookSet is replaced as a whole so readers never see a partial update.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func defaultHooks() *hookSet {
	return &hookSet{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var current atomic.Pointer[hookSet]

func init() { current.Store(defaultHooks()) }

// update copies the current set, applies fn and publishes the result.
func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks installs h for all later pipeline events. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks installs h for all later cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h for all later HTTP events. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks. Tests call it in cleanup.
func Reset() { current.Store(defaultHooks()) }
