// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/paokel/novelhub/internal/api"
	"github.com/paokel/novelhub/internal/auth"
	"github.com/paokel/novelhub/internal/bookstore"
	"github.com/paokel/novelhub/internal/catalog"
	"github.com/paokel/novelhub/internal/events"
	"github.com/paokel/novelhub/internal/mcpserver"
	"github.com/paokel/novelhub/internal/repo"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("content_base", cfg.Content.BasePath),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	books, builder := buildStore(cfg)
	gate := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.Password, cfg.Auth.PasswordHash, cfg.Auth.TTL())

	broker := events.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(books, builder, gate, cfg.Auth.AuthEnabled(), broker)

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

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

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

// RunRepair rebuilds the manifest from the per-book metadata files and
// prints the report.
func RunRepair(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	books, _ := buildStore(app.config)
	report, err := books.RebuildManifest(ctx)
	if err != nil {
		return fmt.Errorf("rebuild manifest: %w", err)
	}
	slog.Info("Manifest rebuilt",
		slog.Int("books", report.Books),
		slog.Any("skipped", report.Skipped))
	return nil
}

// RunMCP serves the read-only library tools over MCP stdio transport.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	books, builder := buildStore(app.config)
	return mcpserver.New(books, builder).ServeStdio()
}

// buildStore constructs the repository client from config (dependency
// injection; no package-level client exists) and the components on top.
func buildStore(cfg *Config) (*bookstore.Store, *catalog.Builder) {
	var client repo.Client
	switch cfg.Storage.Backend {
	case BackendMemory:
		client = repo.NewMemory()
	default:
		client = repo.NewGitHub(cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch, cfg.GitHub.Token)
	}

	books := bookstore.New(client, cfg.Content.BasePath)

	rawBase := cfg.Content.PublicBaseURL
	if rawBase == "" && cfg.Storage.Backend == BackendGitHub {
		rawBase = fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s",
			cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch)
	}
	return books, catalog.NewBuilder(books, rawBase)
}
