package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/matzehuels/cmakegraph/pkg/dot"
	"github.com/matzehuels/cmakegraph/pkg/graph"
	"github.com/matzehuels/cmakegraph/pkg/observability"
	"github.com/matzehuels/cmakegraph/pkg/transform"
)

// Run executes parse, filter, annotate and emit on a DOT description.
//
// It returns INVALID_INPUT for bad options, the parser's
// MALFORMED_DESCRIPTION or UNKNOWN_NODE_REFERENCE errors, or ctx.Err() if
// the context is canceled between stages. On error no DOT is produced.
func Run(ctx context.Context, text string, opts Options) (*Result, error) {
	return run(ctx, opts, func() (*dot.ParseResult, error) { return dot.ParseWithDiagnostics(text) })
}

// RunReader is like [Run] but reads the description from r, e.g. stdin.
func RunReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	return run(ctx, opts, func() (*dot.ParseResult, error) { return dot.ParseReader(r) })
}

func run(ctx context.Context, opts Options, parse func() (*dot.ParseResult, error)) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	logger := opts.Logger
	hooks := observability.Pipeline()

	res := &Result{}

	// Stage 1: Parse
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, observability.StageParse)
	start := time.Now()
	parsed, err := parse()
	res.Stats.ParseTime = time.Since(start)
	if err != nil {
		hooks.OnStageComplete(ctx, observability.StageParse, 0, 0, res.Stats.ParseTime, err)
		return nil, err
	}
	hooks.OnStageComplete(ctx, observability.StageParse, parsed.Graph.NodeCount(), parsed.Graph.EdgeCount(), res.Stats.ParseTime, nil)
	res.Parsed, res.Warnings, res.Stage = parsed.Graph, parsed.Warnings, StageParsed
	for _, w := range parsed.Warnings {
		logger.Warn(w.Message)
	}
	logger.Debug("parsed description",
		"nodes", parsed.Graph.NodeCount(),
		"edges", parsed.Graph.EdgeCount(),
		"duration", res.Stats.ParseTime)

	return finish(ctx, res, opts)
}

// RunGraph runs filter, annotate and emit on an already built graph, such as
// one read through the CMake file API. The graph is reported as the parse
// stage's output.
func RunGraph(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g == nil {
		g = graph.NewBuilder("").Build()
	}
	res := &Result{Parsed: g, Stage: StageParsed}
	return finish(ctx, res, opts)
}

// finish runs the stages after parsing. opts must be validated and defaulted.
func finish(ctx context.Context, res *Result, opts Options) (*Result, error) {
	logger := opts.Logger
	hooks := observability.Pipeline()

	// Stage 2: Filter
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, observability.StageFilter)
	start := time.Now()
	filtered, fstats := transform.FilterWithStats(res.Parsed, opts.Rules())
	res.Stats.FilterTime = time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageFilter, filtered.NodeCount(), filtered.EdgeCount(), res.Stats.FilterTime, nil)
	res.Filtered, res.Stage = filtered, StageFiltered
	res.Stats.NodeCount = filtered.NodeCount()
	res.Stats.EdgeCount = filtered.EdgeCount()
	res.Stats.NodesRemoved = fstats.NodesRemoved
	res.Stats.EdgesRemoved = fstats.EdgesRemoved
	res.Stats.Removed = fstats.Removed
	logger.Debug("filtered targets",
		"removed_nodes", fstats.NodesRemoved,
		"removed_edges", fstats.EdgesRemoved,
		"duration", res.Stats.FilterTime)

	// Stage 3: Annotate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, observability.StageAnnotate)
	start = time.Now()
	annotated := transform.Annotate(filtered, opts.FrequentThreshold)
	res.Stats.AnnotateTime = time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageAnnotate, annotated.NodeCount(), annotated.EdgeCount(), res.Stats.AnnotateTime, nil)
	res.Annotated, res.Stage = annotated, StageAnnotated
	res.Stats.FrequentCount = len(annotated.FrequentNodes())
	logger.Debug("annotated frequent dependencies",
		"threshold", opts.FrequentThreshold,
		"frequent", res.Stats.FrequentCount,
		"duration", res.Stats.AnnotateTime)

	// Stage 4: Emit
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hooks.OnStageStart(ctx, observability.StageEmit)
	start = time.Now()
	res.DOT = dot.Emit(annotated, dot.EmitOptions{Legend: opts.Legend})
	res.Stats.EmitTime = time.Since(start)
	hooks.OnStageComplete(ctx, observability.StageEmit, annotated.NodeCount(), annotated.EdgeCount(), res.Stats.EmitTime, nil)
	res.Stage = StageEmitted

	logger.Info("transformed graph",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"removed", res.Stats.NodesRemoved,
		"frequent", res.Stats.FrequentCount,
		"warnings", len(res.Warnings),
		"duration", res.Stats.Total())

	return res, nil
}
