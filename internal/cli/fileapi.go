package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cmakegraph/pkg/errors"
	"github.com/matzehuels/cmakegraph/pkg/fileapi"
	cgio "github.com/matzehuels/cmakegraph/pkg/io"
	"github.com/matzehuels/cmakegraph/pkg/pipeline"
)

// fileapiCommand creates the fileapi command group.
func (c *CLI) fileapiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fileapi",
		Short: "Read target graphs through the CMake file API",
		Long: `The CMake file API describes every target of a build tree, including the
exact target types, without a separate --graphviz run. Set up a query once,
run cmake, then turn the reply into DOT.`,
		Example: `  cmakegraph fileapi setup -B build
  cmake -S . -B build
  cmakegraph fileapi graph -B build -o graphs/ --skip-kinds utility`,
	}

	cmd.AddCommand(c.fileapiSetupCommand())
	cmd.AddCommand(c.fileapiGraphCommand())

	return cmd
}

func (c *CLI) fileapiSetupCommand() *cobra.Command {
	var buildDir string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Request the code model on the next cmake run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fileapi.SetupQuery(buildDir); err != nil {
				return err
			}
			stderr := cmd.ErrOrStderr()
			printSuccess(stderr, "Query written")
			printFile(stderr, fileapi.QueryDir(buildDir))
			printNextStep(stderr, "Next", fmt.Sprintf("cmake -B %s && %s fileapi graph -B %s", buildDir, appName, buildDir))
			return nil
		},
	}

	cmd.Flags().StringVarP(&buildDir, "build-dir", "B", "build", "CMake build directory")
	return cmd
}

func (c *CLI) fileapiGraphCommand() *cobra.Command {
	var (
		flags     pipelineFlags
		buildDir  string
		outputDir string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Transform the code model reply into one graph per configuration",
		Long: `Graph reads the newest file-API reply of the build directory and runs every
configuration through the same filter and annotation as transform. Output
files are named after the configuration, e.g. Debug.dot.

A single configuration is written to stdout unless --output-dir is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}
			if format != pipeline.FormatDOT && format != pipeline.FormatJSON {
				return errors.New(errors.ErrCodeInvalidInput, "fileapi graph writes dot or json; use render for images")
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg, logger)
			if err := opts.Validate(); err != nil {
				return err
			}

			configs, err := fileapi.LoadReply(buildDir)
			if err != nil {
				return err
			}
			logger.Debug("loaded file-API reply", "build_dir", buildDir, "configurations", len(configs))
			if outputDir == "" && len(configs) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "reply has %d configurations; use --output-dir", len(configs))
			}

			stderr := cmd.ErrOrStderr()
			for _, conf := range configs {
				g, err := conf.Graph()
				if err != nil {
					return fmt.Errorf("configuration %q: %w", conf.Name, err)
				}
				res, err := pipeline.RunGraph(ctx, g, opts)
				if err != nil {
					return fmt.Errorf("configuration %q: %w", conf.Name, err)
				}

				if outputDir == "" {
					data, err := pipeline.Artifact(ctx, res, format, nil)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}

				path := filepath.Join(outputDir, conf.FileName(pipeline.Extension(format)))
				if format == pipeline.FormatJSON {
					err = cgio.ExportJSON(res.Annotated, path)
				} else {
					err = cgio.ExportDOT(path, res.DOT)
				}
				if err != nil {
					return err
				}
				printSuccess(stderr, "Configuration %s", conf.FileName(""))
				printStats(stderr, nil, graphStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.NodesRemoved)...)
				printFile(stderr, path)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&buildDir, "build-dir", "B", "build", "CMake build directory")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for one file per configuration")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatDOT, "output format: dot, json")

	return cmd
}
