package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	cgio "github.com/matzehuels/cmakegraph/pkg/io"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
	"github.com/matzehuels/cmakegraph/pkg/render"
)

// transformOpts holds the command-line flags for the transform command.
type transformOpts struct {
	pipelineFlags
	output    string // output file for a single input
	outputDir string // directory receiving one file per input
	fragments bool   // also transform the per-target fragments of each input
	format    string // dot, json, svg or png
	noCache   bool
}

// transformCommand creates the transform command.
func (c *CLI) transformCommand() *cobra.Command {
	var opts transformOpts

	cmd := &cobra.Command{
		Use:   "transform INPUT...",
		Short: "Filter and annotate CMake graphviz files",
		Long: `Transform reads DOT files written by cmake --graphviz, removes skipped
targets, highlights frequently used dependencies and writes the result.

With a single input and neither -o nor --output-dir, the result is written to
stdout. An input of - reads the description from stdin; .json inputs are
graphs exported with -f json and are filtered and annotated again.

Every input is transformed before any output is written, so a failing input
leaves no partial results behind.`,
		Example: `  cmake --graphviz=build/graph.dot -S . -B build
  cmakegraph transform build/graph.dot --skip-kinds utility --skip-names test_ --frequent-deps 3 -o graph.dot
  cmakegraph transform build/graph.dot --fragments --output-dir out/
  cat build/graph.dot | cmakegraph transform - --skip-kinds utility`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTransform(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single input)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "write one output file per input into this directory")
	cmd.Flags().BoolVar(&opts.fragments, "fragments", false, "also transform the per-target files next to each input (requires --output-dir)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot (default), json, svg, png")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not use the render cache for svg/png")

	return cmd
}

// stdinInput names standard input as an input argument.
const stdinInput = "-"

// transformJob is one input file and where its result goes. An empty out
// means stdout.
type transformJob struct {
	in, out string
}

// transformOutput is the finished artifact of a job, held until the whole
// batch has succeeded.
type transformOutput struct {
	job  transformJob
	res  *pipeline.Result
	data []byte
}

func (c *CLI) runTransform(cmd *cobra.Command, args []string, opts *transformOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	pOpts := opts.options(cmd, cfg, logger)
	if err := pOpts.Validate(); err != nil {
		return err
	}

	format := opts.format
	if !cmd.Flags().Changed("format") && cfg.Render.Format != "" {
		format = cfg.Render.Format
	}
	if format == "" {
		format = pipeline.FormatDOT
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}

	jobs, err := planTransform(args, opts, format)
	if err != nil {
		return err
	}

	var r *render.Renderer
	if format == pipeline.FormatSVG || format == pipeline.FormatPNG {
		r = c.newRenderer(opts.noCache || !cfg.CacheEnabled())
		defer r.Cache.Close()
	}

	// Nothing is written until every input has been transformed.
	outputs := make([]transformOutput, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		prog := newProgress(logger)
		res, data, err := transformOne(ctx, job.in, cmd.InOrStdin(), pOpts, format, r)
		if err != nil {
			return fmt.Errorf("%s: %w", job.in, err)
		}
		prog.done("Transformed " + job.in)
		outputs = append(outputs, transformOutput{job: job, res: res, data: data})
	}

	stderr := cmd.ErrOrStderr()
	for _, o := range outputs {
		for _, w := range o.res.Warnings {
			printWarning(stderr, "%s: %s", o.job.in, w.Message)
		}
		if o.job.out == "" {
			if _, err := cmd.OutOrStdout().Write(o.data); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "write output")
			}
			continue
		}
		if err := writeOutput(o.job.out, o.data); err != nil {
			return err
		}
		stats := o.res.Stats
		printSuccess(stderr, "Transformed %s", o.job.in)
		printStats(stderr, nil, graphStats(stats.NodeCount, stats.EdgeCount, stats.NodesRemoved)...)
		printFile(stderr, o.job.out)
	}
	return nil
}

// transformOne runs the pipeline on one input and encodes the result.
func transformOne(ctx context.Context, in string, stdin io.Reader, opts pipeline.Options, format string, r *render.Renderer) (*pipeline.Result, []byte, error) {
	res, err := runInput(ctx, in, stdin, opts)
	if err != nil {
		return nil, nil, err
	}
	data, err := pipeline.Artifact(ctx, res, format, r)
	if err != nil {
		return nil, nil, err
	}
	return res, data, nil
}

// runInput runs the pipeline on a file, a JSON export, or stdin for "-".
func runInput(ctx context.Context, in string, stdin io.Reader, opts pipeline.Options) (*pipeline.Result, error) {
	if in == stdinInput {
		return pipeline.RunReader(ctx, stdin, opts)
	}
	return pipeline.RunFile(ctx, in, opts)
}

// planTransform resolves inputs and output paths. It checks that every input
// exists and that no two jobs share an output.
func planTransform(inputs []string, opts *transformOpts, format string) ([]transformJob, error) {
	if opts.output != "" && opts.outputDir != "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "-o and --output-dir are mutually exclusive")
	}
	if opts.output != "" && len(inputs) > 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "-o accepts a single input; use --output-dir for %d inputs", len(inputs))
	}
	if opts.outputDir == "" && (len(inputs) > 1 || opts.fragments) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--output-dir is required for several inputs or --fragments")
	}

	var jobs []transformJob
	stdinSeen := false
	for _, in := range inputs {
		if in == stdinInput {
			if stdinSeen {
				return nil, errors.New(errors.ErrCodeInvalidInput, "standard input (-) can only be read once")
			}
			if opts.fragments {
				return nil, errors.New(errors.ErrCodeInvalidInput, "--fragments needs file inputs, not standard input")
			}
			stdinSeen = true
		} else if _, err := cgio.ImportDOT(in); err != nil {
			return nil, err
		}
		switch {
		case opts.output != "":
			jobs = append(jobs, transformJob{in: in, out: opts.output})
		case opts.outputDir != "":
			jobs = append(jobs, transformJob{in: in, out: filepath.Join(opts.outputDir, outputName(in, format))})
		default:
			jobs = append(jobs, transformJob{in: in})
		}

		if !opts.fragments {
			continue
		}
		frags, err := cgio.Fragments(in)
		if err != nil {
			return nil, err
		}
		for _, f := range frags {
			jobs = append(jobs, transformJob{in: f.Path, out: filepath.Join(opts.outputDir, outputName(f.Path, format))})
		}
	}

	seen := make(map[string]string, len(jobs))
	for _, j := range jobs {
		if j.out == "" {
			continue
		}
		if prev, ok := seen[j.out]; ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s and %s would both be written to %s", prev, j.in, j.out)
		}
		seen[j.out] = j.in
	}
	return jobs, nil
}

// outputName derives the output file name for input: "graph.dot" stays
// "graph.dot" for DOT output and becomes "graph.svg" for SVG; fragments such
// as "graph.dot.core" get the extension appended. JSON exports are treated
// as "<name>.dot" and stdin as "stdin.dot".
func outputName(input, format string) string {
	name := filepath.Base(input)
	if input == stdinInput {
		name = "stdin.dot"
	}
	if ext := filepath.Ext(name); strings.EqualFold(ext, pipeline.Extension(pipeline.FormatJSON)) {
		name = strings.TrimSuffix(name, ext) + pipeline.Extension(pipeline.FormatDOT)
	}
	if format == pipeline.FormatDOT {
		return name
	}
	return strings.TrimSuffix(name, ".dot") + pipeline.Extension(format)
}

// writeOutput writes data atomically, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	if err := cgio.WriteFileAtomic(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
