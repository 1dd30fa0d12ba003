package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cmakegraph/internal/server"
	"github.com/matzehuels/cmakegraph/pkg/buildinfo"
	"github.com/matzehuels/cmakegraph/pkg/cache"
	"github.com/matzehuels/cmakegraph/pkg/render"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, redisURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transformation over HTTP",
		Long: `Serve starts an HTTP server. POST a DOT file to /v1/transform; options are
passed as query parameters named like the configuration keys:

  curl --data-binary @build/graph.dot 'localhost:8080/v1/transform?skip_kinds=utility&frequent_deps=3'

Renderings (format=svg or png) are cached in memory, or in Redis with
--redis-url so that several instances share them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("redis-url") {
				redisURL = cfg.Server.RedisURL
			}

			opts := server.Options{Logger: logger}
			if redisURL != "" {
				rc, err := cache.NewRedisCache(ctx, redisURL, appName+":")
				if err != nil {
					return fmt.Errorf("connect to redis: %w", err)
				}
				defer rc.Close()
				logger.Info("using redis render cache")
				keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
				opts.Renderer = render.NewRenderer(rc, keyer, logger)
			}
			return server.New(opts).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "share the render cache through Redis (e.g. redis://localhost:6379/0)")
	return cmd
}
