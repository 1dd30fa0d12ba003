// Package cli implements the cmakegraph command-line interface.
//
// The commands wrap the transformation pipeline for files produced by
// `cmake --graphviz`:
//
//   - transform: filter and annotate DOT descriptions
//   - render: render a DOT description to SVG or PNG
//   - inspect: print a table of the targets after filtering
//   - fileapi: read the target graph through CMake's file API
//   - serve: expose the pipeline over HTTP
//   - cache: manage the render cache
//
// All commands support --verbose (-v) for debug-level logging. Settings are
// read from .cmakegraph.toml (or --config); flags that are set explicitly
// take precedence over the file.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cmakegraph/pkg/buildinfo"
	"github.com/matzehuels/cmakegraph/pkg/cache"
	"github.com/matzehuels/cmakegraph/pkg/config"
	"github.com/matzehuels/cmakegraph/pkg/observability"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
	"github.com/matzehuels/cmakegraph/pkg/render"
)

// appName is the application name used for directories and display.
const appName = "cmakegraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose    bool
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cmakegraph cleans up CMake target dependency graphs",
		Long: `cmakegraph reads the graphviz output of cmake --graphviz, removes targets
you are not interested in, highlights dependencies that many targets share, and
writes the result back as DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Register()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (default: ./"+config.DefaultFile+" if present)")

	root.AddCommand(c.transformCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.fileapiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config, or the default file in the working directory.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.LoadDefault(wd)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded configuration", "path", cfg.Path)
	}
	return cfg, nil
}

// =============================================================================
// Renderer Factory
// =============================================================================

// newRenderer creates a renderer backed by the file cache. Cache keys are
// scoped to the release so a new Graphviz build never serves stale images.
func (c *CLI) newRenderer(noCache bool) *render.Renderer {
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return render.NewRenderer(c.newCache(noCache), keyer, c.Logger)
}

func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the render cache directory (e.g. ~/.cache/cmakegraph/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineFlags holds the flags shared by commands that run the pipeline.
type pipelineFlags struct {
	skipKinds    []string
	skipNames    []string
	frequentDeps int
	legend       bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.skipKinds, "skip-kinds", nil, "target kinds to remove (e.g. utility,interface_library)")
	cmd.Flags().StringSliceVar(&f.skipNames, "skip-names", nil, "remove targets whose name contains any of these substrings")
	cmd.Flags().IntVar(&f.frequentDeps, "frequent-deps", 0, "highlight targets with at least N dependers (0 disables)")
	cmd.Flags().BoolVar(&f.legend, "legend", false, "add a legend to the output")
}

// options merges the configuration file with the flags that were set
// explicitly on cmd.
func (f *pipelineFlags) options(cmd *cobra.Command, cfg *config.Config, logger *log.Logger) pipeline.Options {
	opts := pipeline.Options{Logger: logger}
	cfg.Apply(&opts)

	flags := cmd.Flags()
	if flags.Changed("skip-kinds") {
		opts.SkipKinds = f.skipKinds
	}
	if flags.Changed("skip-names") {
		opts.SkipNames = f.skipNames
	}
	if flags.Changed("frequent-deps") {
		opts.FrequentThreshold = f.frequentDeps
	}
	if flags.Changed("legend") {
		opts.Legend = f.legend
	}
	return opts
}
