// Package ui serves the browser dashboard: server-rendered HTML patched over
// SSE, with one dashboard store per browser session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/maximuthking/csv-viewer/internal/catalog"
	"github.com/maximuthking/csv-viewer/internal/dashboard"
)

const sessionCookieName = "csvviewer_session"

// Server is the dashboard web server.
type Server struct {
	gateway      dashboard.Gateway
	sessionStore *sessions.CookieStore
	addr         string
	watch        bool
	dataDir      string
	logger       *slog.Logger
	dashOpts     dashboard.Options

	baseCtx context.Context

	mu         sync.Mutex
	dashboards map[string]*dashboard.Dashboard
}

// Config holds configuration for the UI server.
type Config struct {
	Gateway       dashboard.Gateway
	Addr          string
	Watch         bool
	DataDir       string
	SessionSecret string
	Dashboard     dashboard.Options
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString()
	}
	sessionStore := sessions.NewCookieStore([]byte(secret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Server{
		gateway:      cfg.Gateway,
		sessionStore: sessionStore,
		addr:         cfg.Addr,
		watch:        cfg.Watch,
		dataDir:      cfg.DataDir,
		logger:       logger,
		dashOpts:     cfg.Dashboard,
		baseCtx:      context.Background(),
		dashboards:   make(map[string]*dashboard.Dashboard),
	}
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://%s", s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	// Dashboard fetches must outlive the action request that triggered them,
	// so they run on the server's context rather than the request's.
	s.baseCtx = egctx

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchDataDir(egctx)
		})
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

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Router builds the chi router serving the dashboard.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Get("/updates", s.handleUpdates)

	r.Route("/actions", func(r chi.Router) {
		r.Post("/select", s.handleSelect)
		r.Post("/reload", s.handleReload)
		r.Post("/page", s.handlePage)
		r.Post("/page-size", s.handlePageSize)
		r.Post("/sort", s.handleSort)
		r.Post("/filter", s.handleFilter)
		r.Post("/search", s.handleSearch)
		r.Post("/search/clear", s.handleClearSearch)
		r.Post("/chart", s.handleChart)
		r.Post("/refresh", s.handleRefresh)
	})
	return r
}

// dashboardFor returns the dashboard store bound to the request's browser
// session, creating and initializing one on first contact.
func (s *Server) dashboardFor(w http.ResponseWriter, r *http.Request) *dashboard.Dashboard {
	session, _ := s.sessionStore.Get(r, sessionCookieName)

	id, ok := session.Values["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		session.Values["id"] = id
		if err := session.Save(r, w); err != nil {
			s.logger.Debug("session save failed", "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.dashboards[id]; ok {
		return d
	}

	opts := s.dashOpts
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	d := dashboard.New(s.gateway, opts)
	s.dashboards[id] = d
	go d.Init(s.baseCtx)
	return d
}

// watchDataDir reloads every session's catalog when dataset files change.
// Bursts of filesystem events collapse into one reload.
func (s *Server) watchDataDir(ctx context.Context) error {
	var (
		mu       sync.Mutex
		debounce *time.Timer
	)

	err := catalog.New(s.dataDir, s.logger).Watch(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(100*time.Millisecond, func() {
			s.logger.Debug("data directory changed, reloading catalogs")
			s.reloadAll(ctx)
		})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		// Keep serving without the watcher rather than killing the server.
		s.logger.Error("failed to watch data directory", "dir", s.dataDir, "error", err)
		<-ctx.Done()
	}
	return nil
}

func (s *Server) reloadAll(ctx context.Context) {
	s.mu.Lock()
	dashboards := make([]*dashboard.Dashboard, 0, len(s.dashboards))
	for _, d := range s.dashboards {
		dashboards = append(dashboards, d)
	}
	s.mu.Unlock()

	for _, d := range dashboards {
		d.Reload(ctx)
	}
}
