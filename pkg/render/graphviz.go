package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cmakegraph/pkg/errors"
)

// Supported output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

var gvFormats = map[string]graphviz.Format{
	FormatSVG: graphviz.SVG,
	FormatPNG: graphviz.PNG,
}

// ValidateFormat checks that a format can be rendered.
func ValidateFormat(format string) error {
	if _, ok := gvFormats[format]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid render format: %q (must be one of: svg, png)", format)
	}
	return nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz's dot layout.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, FormatSVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz's dot layout.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, FormatPNG)
}

func renderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	gvFormat, ok := gvFormats[format]
	if !ok {
		return nil, ValidateFormat(format)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRendererFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRendererFailed, err, "graphviz rejected the description")
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeRendererFailed, "graphviz rejected the description")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRendererFailed, err, "render %s", format)
	}
	if buf.Len() == 0 {
		return nil, errors.New(errors.ErrCodeRendererFailed, "render %s: empty output", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
