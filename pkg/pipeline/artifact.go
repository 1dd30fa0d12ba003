package pipeline

import (
	"context"

	cgio "github.com/matzehuels/cmakegraph/pkg/io"
	"github.com/matzehuels/cmakegraph/pkg/render"
)

// Artifact returns the result of a run encoded in format: the emitted DOT,
// the JSON export of the annotated graph, or an SVG/PNG rendering of the
// emitted DOT. r renders images; a nil r renders without a cache.
func Artifact(ctx context.Context, res *Result, format string, r *render.Renderer) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatJSON:
		return cgio.MarshalJSON(res.Annotated)
	case FormatSVG, FormatPNG:
		if r == nil {
			r = render.NewRenderer(nil, nil, nil)
		}
		return r.Render(ctx, res.DOT, format)
	default:
		return []byte(res.DOT), nil
	}
}

// Extension returns the file extension for format.
func Extension(format string) string {
	if format == "" {
		return "." + FormatDOT
	}
	return "." + format
}
