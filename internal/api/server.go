// Package api exposes the analytic engine and the file catalog as the /v1
// HTTP service consumed by the dashboard gateway.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/maximuthking/csv-viewer/internal/engine"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// DataSource is the analytic engine surface the API serves. Implemented by
// *engine.Engine.
type DataSource interface {
	Describe(ctx context.Context, path string) ([]core.ColumnDescriptor, error)
	Preview(ctx context.Context, q engine.PreviewQuery) (*core.PreviewResult, error)
	Locate(ctx context.Context, q engine.LocateQuery) (*core.LocateResult, error)
	Summarize(ctx context.Context, q engine.SummaryQuery) ([]core.ColumnSummary, error)
	ChartData(ctx context.Context, q engine.ChartQuery) (*core.TableResult, error)
	UniqueValues(ctx context.Context, path, column string, limit int) ([]any, error)
	Query(ctx context.Context, path, query string) (*core.TableResult, error)
}

// FileLister is the catalog surface the API serves. Implemented by
// *catalog.Service.
type FileLister interface {
	List() ([]core.DatasetDescriptor, error)
}

// Server is the analytic HTTP service.
type Server struct {
	source  DataSource
	catalog FileLister
	addr    string
	logger  *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Source  DataSource
	Catalog FileLister
	Addr    string
	Logger  *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		source:  cfg.Source,
		catalog: cfg.Catalog,
		addr:    cfg.Addr,
		logger:  logger,
	}
}

// Router builds the chi router serving the /v1 API.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", s.handleHealth)
		r.Get("/files", s.handleListFiles)
		r.Get("/tables", s.handleSchema)
		r.Get("/unique-values", s.handleUniqueValues)
		r.Post("/preview", s.handlePreview)
		r.Post("/preview/locate", s.handleLocate)
		r.Post("/summary", s.handleSummary)
		r.Post("/chart-data", s.handleChartData)
		r.Post("/query", s.handleQuery)
	})
	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
