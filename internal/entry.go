// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/terminalart/internal/api"
	"github.com/starford/terminalart/internal/artifact"
	"github.com/starford/terminalart/internal/cache"
	"github.com/starford/terminalart/internal/mcpserver"
	"github.com/starford/terminalart/internal/mirror"
	"github.com/starford/terminalart/internal/render"
	"github.com/starford/terminalart/internal/sse"
)

var errConfigRequired = errors.New("config is required")

func (a *application) logger() *slog.Logger {
	out := a.logOutput
	if out == nil {
		out = os.Stdout
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// newService builds the artifact service over be.
func newService(cfg *Config, be *backend, logger *slog.Logger) (*artifact.Service, cache.Store, error) {
	store, err := openCache(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init cache: %w", err)
	}
	opts := []artifact.Option{
		artifact.WithCache(store, cfg.Cache.TTL),
		artifact.WithPublicURL(cfg.App.PublicURL),
	}
	if be.spool != nil {
		opts = append(opts, artifact.WithSpool(be.spool))
	}
	if be.db != nil {
		opts = append(opts, artifact.WithMutableRecords())
	}
	return artifact.New(be.reader, logger, opts...), store, nil
}

// readyChecks checks the ledger and the render cache.
func readyChecks(be *backend, store cache.Store) map[string]api.Check {
	return map[string]api.Check{
		"ledger": func(ctx context.Context) error {
			_, err := be.reader.Count(ctx)
			return err
		},
		"cache": store.Ping,
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("ledger_backend", cfg.Ledger.Backend),
		slog.Bool("cache", cfg.Cache.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	svc, store, err := newService(cfg, be, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Run initial sync.
	if be.db != nil {
		if n, err := mirror.Sync(be.db, be.spool, logger, broker.PublishRecordEvent); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		} else {
			logger.Info("initial sync done", slog.Int("indexed", n))
		}
	}

	// Build API handler and router.
	ogFormat, _ := render.ParseFormat(cfg.Render.OGFormat)
	hopts := []api.HandlerOption{
		api.WithOGFormat(ogFormat),
		api.WithStagedHook(func(id uint64) { broker.PublishRecordEvent("staged", id) }),
	}
	if be.db != nil {
		hopts = append(hopts, api.WithSearcher(be.db))
	}
	apiRouter := api.NewRouter(api.NewHandler(svc, hopts...), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(api.Metrics)
	r.Use(api.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", api.Live)
	r.Get("/health/ready", api.Ready(readyChecks(be, store)))

	// Metrics endpoint (for Prometheus scraping).
	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start spool watcher with SSE callback.
	if be.db != nil && cfg.Mirror.Watch {
		g.Go(func() error {
			if err := mirror.Watch(gCtx, be.db, be.spool, cfg.Mirror.Spool, logger, broker.PublishRecordEvent); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Event streams never end on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// SyncMirror imports the record spool into the SQLite mirror once and
// returns the number of records indexed.
func SyncMirror(_ context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	logger := app.logger()

	db, spool, err := openMirror(app.config)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	n, err := mirror.Sync(db, spool, logger, nil)
	if err != nil {
		return n, fmt.Errorf("sync mirror: %w", err)
	}
	logger.Info("sync done", slog.Int("indexed", n))
	return n, nil
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	be, err := openBackend(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer be.close()

	svc, store, err := newService(app.config, be, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var search mcpserver.Searcher
	if be.db != nil {
		if _, err := mirror.Sync(be.db, be.spool, logger, nil); err != nil {
			logger.Warn("initial sync failed", slog.String("error", err.Error()))
		}
		search = be.db
	}
	return mcpserver.New(svc, search).ServeStdio()
}

// Preview renders a message, or the sample feed when feed is true, to w
// without a ledger.
func Preview(w io.Writer, msg artifact.Message, feed bool, format render.Format) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := artifact.New(nil, logger)

	var (
		doc artifact.Document
		err error
	)
	if feed {
		doc, err = svc.PreviewFeed(nil, format)
	} else {
		doc, err = svc.PreviewMessage(msg, format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(doc.Body)
	return err
}
