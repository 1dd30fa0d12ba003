package render

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cmakegraph/pkg/cache"
	"github.com/matzehuels/cmakegraph/pkg/observability"
)

const artifactKeyType = "artifact"

// Renderer renders DOT text through a cache.
//
// It is safe for concurrent use when its cache is.
type Renderer struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRenderer creates a renderer. A nil cache disables caching, a nil keyer
// uses the default keyer, and a nil logger discards output.
func NewRenderer(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Renderer{Cache: c, Keyer: keyer, Logger: logger}
}

// Render renders dot in the given format, serving repeated requests from
// the cache. Cache failures are logged and never fail the render.
func (r *Renderer) Render(ctx context.Context, dot, format string) ([]byte, error) {
	data, _, err := r.RenderCached(ctx, dot, format)
	return data, err
}

// RenderCached is like Render and also reports whether the result came from
// the cache.
func (r *Renderer) RenderCached(ctx context.Context, dot, format string) ([]byte, bool, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: format})
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, artifactKeyType)
		r.Logger.Debug("rendered artifact from cache", "format", format, "bytes", len(data))
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, artifactKeyType)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	switch format {
	case FormatPNG:
		data, err = RenderPNG(ctx, dot)
	default:
		data, err = RenderSVG(ctx, dot)
	}
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
	}
	return data, false, nil
}
