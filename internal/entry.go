// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/content"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/watch"
)

// workspace bundles the stores built from a Config.
type workspace struct {
	cats     *content.CategoryStore
	repo     *content.Repository
	exporter *export.Service
	kv       storage.Provider
}

func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// newWorkspace opens the configured storage engine, loads the published
// site snapshot, and builds the stores on top of both.
func newWorkspace(cfg *Config, logger *slog.Logger) (*workspace, error) {
	var kv storage.Provider
	switch cfg.Workspace.Engine {
	case EngineSQLite:
		db, err := storage.OpenSQLite(cfg.Workspace.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite storage: %w", err)
		}
		kv = db
	default:
		if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create workspace dir: %w", err)
		}
		fsStore, err := storage.NewFS(cfg.Workspace.Path)
		if err != nil {
			return nil, fmt.Errorf("init fs storage: %w", err)
		}
		kv = fsStore
	}

	snap := site.Empty()
	if cfg.Site.SnapshotPath != "" {
		loaded, err := site.Load(cfg.Site.SnapshotPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("site snapshot not found, starting without published content",
				slog.String("path", cfg.Site.SnapshotPath))
		case err != nil:
			kv.Close()
			return nil, fmt.Errorf("load site snapshot: %w", err)
		default:
			snap = loaded
		}
	}

	cats, repo := content.New(kv, snap)
	return &workspace{
		cats:     cats,
		repo:     repo,
		exporter: export.NewService(repo, cats),
		kv:       kv,
	}, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("workspace_engine", cfg.Workspace.Engine),
		slog.String("site_snapshot", cfg.Site.SnapshotPath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ws, err := newWorkspace(cfg, logger)
	if err != nil {
		return err
	}
	defer ws.kv.Close()

	// SSE broker. Tree updates are throttled so a burst of saves does
	// not flood clients with recomputes.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(ws.repo, ws.cats, ws.exporter, broker,
		cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the workspace directory so out-of-band edits (git pull,
	// another editor) show up in connected clients. Only the fs engine
	// has files to watch.
	if fsStore, ok := ws.kv.(*storage.FS); ok {
		g.Go(func() error {
			if err := watch.Run(gCtx, fsStore.Root(), logger, broker); err != nil {
				logger.Warn("workspace watcher stopped", slog.String("error", err.Error()))
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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunExport writes every article as a canonical Markdown file into
// outDir, plus a snapshot.json with the full workspace document.
func RunExport(ctx context.Context, cfg *Config, outDir string) error {
	logger := newLogger(cfg)

	ws, err := newWorkspace(cfg, logger)
	if err != nil {
		return err
	}
	defer ws.kv.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	articles, err := ws.repo.List(content.Filter{})
	if err != nil {
		return err
	}
	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	files, err := ws.exporter.Batch(ids)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(outDir, f.Filename), []byte(f.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Filename, err)
		}
	}

	snap, err := ws.exporter.All()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "snapshot.json"), data, 0o644); err != nil {
		return fmt.Errorf("write snapshot.json: %w", err)
	}

	logger.Info("Export complete",
		slog.Int("articles", len(files)),
		slog.String("dir", outDir))
	return nil
}

// RunMCP builds the workspace and serves MCP tools over stdio.
func RunMCP(ctx context.Context, cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	ws, err := newWorkspace(cfg, logger)
	if err != nil {
		return err
	}
	defer ws.kv.Close()

	srv := mcpserver.New(ws.repo, ws.cats, ws.exporter)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
