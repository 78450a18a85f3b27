package commands

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maximuthking/csv-viewer/internal/api"
	"github.com/maximuthking/csv-viewer/internal/catalog"
	"github.com/maximuthking/csv-viewer/internal/config"
	"github.com/maximuthking/csv-viewer/internal/dashboard"
	"github.com/maximuthking/csv-viewer/internal/gateway"
	"github.com/maximuthking/csv-viewer/internal/ui"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// UIOptions holds options for the ui command.
type UIOptions struct {
	Addr       string
	APIBaseURL string
	NoBrowser  bool
	Watch      bool
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the browser dashboard",
		Long: `Start the local web server providing the interactive dashboard.

The dashboard provides:
- Dataset catalog with recent selections
- Paginated preview with sorting, filtering and row search
- Per-column summary statistics
- Line, bar and scatter charts with time bucketing

Unless --api points at a running csvviewer serve instance, an API
server is started in-process.`,
		Example: `  # Start the dashboard with an in-process API
  csvviewer ui

  # Use a separately running API server
  csvviewer ui --api http://127.0.0.1:8400

  # Start without auto-opening the browser
  csvviewer ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: "+config.DefaultUIAddr+")")
	cmd.Flags().StringVar(&opts.APIBaseURL, "api", "", "Base URL of a running API server (default: in-process)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload catalogs when dataset files change")

	return cmd
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cfg := config.FromContext(cmd.Context())
	logger := config.LoggerFromContext(cmd.Context())

	// CLI flags override config file
	addr := cfg.UI.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	apiBase := cfg.UI.APIBaseURL
	if opts.APIBaseURL != "" {
		apiBase = opts.APIBaseURL
	}

	watch := cfg.UI.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, egctx := errgroup.WithContext(ctx)

	if apiBase == "" {
		// No remote API configured: run one in-process and talk to it over
		// loopback.
		eng, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()

		apiSrv := api.NewServer(api.Config{
			Source:  eng,
			Catalog: catalog.New(cfg.DataDir, logger),
			Addr:    cfg.API.Addr,
			Logger:  logger,
		})
		eg.Go(func() error {
			return apiSrv.Serve(egctx)
		})
		apiBase = "http://" + cfg.API.Addr
	}

	uiSrv := ui.NewServer(ui.Config{
		Gateway:       gateway.New(apiBase, logger),
		Addr:          addr,
		Watch:         watch,
		DataDir:       cfg.DataDir,
		SessionSecret: cfg.UI.SessionSecret,
		Dashboard: dashboard.Options{
			SummaryRespectsFilters: cfg.SummaryRespectsFilters,
			PageSize:               cfg.PageSize,
			RecentLimit:            cfg.RecentLimit,
			TimeBucket:             cfg.Chart.TimeBucket,
			Interpolation:          core.Interpolation(cfg.Chart.Interpolation),
			Logger:                 logger,
		},
		Logger: logger,
	})
	eg.Go(func() error {
		return uiSrv.Serve(egctx)
	})

	if !opts.NoBrowser {
		go openBrowser("http://" + addr)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard running on http://%s\n", addr)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	return eg.Wait()
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
