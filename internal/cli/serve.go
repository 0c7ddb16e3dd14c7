package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patterndb/internal/config"
	"github.com/matzehuels/patterndb/internal/server"
	"github.com/matzehuels/patterndb/pkg/observability"
)

// serveCommand creates the serve command for the HTTP query server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		tables  []string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer distance queries over HTTP",
		Long: `Load tables and answer distance queries over HTTP until interrupted.

Routes:
  GET /v1/tables
  GET /v1/distance?table=corner-perm&moves=R+U
  GET /v1/heuristic?moves=R+U
  GET /metrics
  GET /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, encodingNames(cfg, tables), workers)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config or :8080)")
	cmd.Flags().StringSliceVarP(&tables, "table", "t", nil, "encodings to serve (default: config or corner-perm,corner-orient)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "build workers for missing tables")
	_ = cmd.RegisterFlagCompletionFunc("table", completeEncodings)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, names []string, workers int) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetBuildHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetQueryHooks(hooks)
	defer observability.Reset()

	dbs, err := c.loadTables(ctx, cfg, names, workers)
	if err != nil {
		return err
	}

	srv := server.New(dbs, c.Logger, reg)
	printSuccess("Serving %d tables on %s", len(dbs), StyleHighlight.Render(cfg.Server.Addr))
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
