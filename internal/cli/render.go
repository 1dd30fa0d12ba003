package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cmakegraph/pkg/dot"
	cgio "github.com/matzehuels/cmakegraph/pkg/io"
	"github.com/matzehuels/cmakegraph/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file; derived from the input when empty
	format  string // svg or png
	noCache bool
}

// renderCommand creates the render command. It renders a DOT file as is;
// run transform first to filter and annotate it.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render INPUT",
		Short: "Render a DOT file to SVG or PNG",
		Long: `Render lays out and draws a DOT file with an embedded Graphviz.
Results are cached by content, so re-rendering an unchanged graph is instant.
A .json input (an export written with transform -f json) is emitted as DOT
with its saved annotations first.`,
		Example: `  cmakegraph transform build/graph.dot --frequent-deps 3 -o graph.dot
  cmakegraph render graph.dot -f png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format's extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), png")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render without reading or writing the cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	format := opts.format
	if format == "" && (cfg.Render.Format == render.FormatSVG || cfg.Render.Format == render.FormatPNG) {
		format = cfg.Render.Format
	}
	if format == "" {
		format = render.FormatSVG
	}
	if err := render.ValidateFormat(format); err != nil {
		return err
	}

	text, err := readRenderInput(input)
	if err != nil {
		return err
	}
	logger.Debug("read description", "path", input, "bytes", len(text))

	r := c.newRenderer(opts.noCache || !cfg.CacheEnabled())
	defer r.Cache.Close()

	stderr := cmd.ErrOrStderr()
	spin := newSpinnerWithContext(ctx, stderr, "Rendering "+input)
	spin.Start()
	data, cached, err := r.RenderCached(ctx, text, format)
	if err != nil {
		spin.StopWithError("Rendering failed")
		return err
	}
	spin.Stop()

	out := opts.output
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(input, ".json"), ".dot") + "." + format
	}
	if err := writeOutput(out, data); err != nil {
		return err
	}

	printSuccess(stderr, "Rendered %s", input)
	printStats(stderr, &cached, fmt.Sprintf("%d bytes", len(data)))
	printFile(stderr, out)
	return nil
}

// readRenderInput returns the DOT text to render: the file itself, or the
// emitted DOT of a JSON export.
func readRenderInput(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return cgio.ImportDOT(path)
	}
	a, err := cgio.ImportJSON(path)
	if err != nil {
		return "", err
	}
	return dot.Emit(a, dot.EmitOptions{}), nil
}
