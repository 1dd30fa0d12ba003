// Package render turns emitted DOT text into images with Graphviz.
//
// Rendering runs in process through github.com/goccy/go-graphviz, so no
// `dot` binary has to be installed. SVG and PNG are supported:
//
//	svg, err := render.RenderSVG(ctx, text)
//
// A [Renderer] adds caching keyed by the content hash of the DOT text, so
// re-rendering an unchanged graph is free:
//
//	r := render.NewRenderer(fileCache, cache.NewDefaultKeyer(), logger)
//	png, err := r.Render(ctx, text, render.FormatPNG)
//
// Every failure is reported with code RENDERER_INVOCATION_FAILED.
package render
