package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	cgio "github.com/matzehuels/cmakegraph/pkg/io"
)

// RunFile reads the file at path and runs the pipeline on it.
//
// Files ending in ".json" are graphs exported with format json; they skip
// parsing and are filtered and annotated again with opts. Anything else is
// read as a DOT description. A missing file is reported as
// MISSING_INPUT_FILE.
func RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	opts.SetDefaults()
	if strings.EqualFold(filepath.Ext(path), Extension(FormatJSON)) {
		a, err := cgio.ImportJSON(path)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("read exported graph", "path", path, "nodes", a.NodeCount())
		return RunGraph(ctx, a.Graph, opts)
	}
	text, err := cgio.ImportDOT(path)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("read description", "path", path, "bytes", len(text))
	return Run(ctx, text, opts)
}
