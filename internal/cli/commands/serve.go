package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maximuthking/csv-viewer/internal/api"
	"github.com/maximuthking/csv-viewer/internal/catalog"
	"github.com/maximuthking/csv-viewer/internal/config"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the analytic API server",
		Long: `Start the HTTP service exposing the dataset catalog and the DuckDB
query engine under /v1. The dashboard (csvviewer ui) consumes this API;
it can also be queried directly.`,
		Example: `  # Serve the default data directory
  csvviewer serve

  # Custom data directory and listen address
  csvviewer serve --data-dir ./datasets --addr 0.0.0.0:9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			logger := config.LoggerFromContext(cmd.Context())

			if addr == "" {
				addr = cfg.API.Addr
			}

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = eng.Close() }()

			srv := api.NewServer(api.Config{
				Source:  eng,
				Catalog: catalog.New(cfg.DataDir, logger),
				Addr:    addr,
				Logger:  logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: "+config.DefaultAPIAddr+")")

	return cmd
}
