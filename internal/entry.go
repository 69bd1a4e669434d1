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
	"golang.org/x/sync/errgroup"

	"github.com/bryanpdl/briefly/internal/api"
	"github.com/bryanpdl/briefly/internal/briefservice"
	"github.com/bryanpdl/briefly/internal/draft"
	"github.com/bryanpdl/briefly/internal/generator"
	"github.com/bryanpdl/briefly/internal/mcpserver"
	"github.com/bryanpdl/briefly/internal/publication"
	"github.com/bryanpdl/briefly/internal/regen"
	"github.com/bryanpdl/briefly/internal/sse"
	"github.com/bryanpdl/briefly/internal/upload"
)

// core holds the components shared by the HTTP and MCP front ends.
type core struct {
	svc     *briefservice.Service
	drafts  draft.Store
	fs      *draft.FS // nil for the memory backend
	uploads *upload.Store
	broker  *sse.Broker
	db      *publication.DB
}

func (c *core) Close() {
	c.broker.Close()
	if err := c.db.Close(); err != nil {
		slog.Warn("close publication store", slog.String("error", err.Error()))
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func buildCore(app *application, logger *slog.Logger) (*core, error) {
	cfg := app.config

	llm := app.llm
	if llm == nil {
		var err error
		if llm, err = generator.NewLLMClient(cfg.LLM.Settings()); err != nil {
			return nil, fmt.Errorf("init llm: %w", err)
		}
	}
	gw, err := generator.NewGateway(llm, logger)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	c := &core{}
	switch cfg.Drafts.Backend {
	case DraftsFS:
		if c.fs, err = draft.NewFS(cfg.Drafts.Path); err != nil {
			return nil, fmt.Errorf("init drafts: %w", err)
		}
		c.drafts = c.fs
	default:
		c.drafts = draft.NewMemory()
	}

	if c.db, err = publication.Open(cfg.SQLite.Path); err != nil {
		return nil, fmt.Errorf("init publication store: %w", err)
	}

	if c.uploads, err = upload.NewStore(cfg.Uploads.Path, cfg.App.PublicBaseURL, cfg.Uploads.MaxBytes); err != nil {
		_ = c.db.Close()
		return nil, fmt.Errorf("init uploads: %w", err)
	}

	// SSE broker.
	c.broker = sse.NewBroker(2 * time.Second)

	c.svc, err = briefservice.New(briefservice.Deps{
		Generator:     gw,
		Coordinator:   regen.New(gw, c.drafts, logger),
		Drafts:        c.drafts,
		Publications:  c.db,
		Notifier:      c.broker,
		Logger:        logger,
		Mode:          cfg.Brief.ContentMode(),
		PublicBaseURL: cfg.App.PublicBaseURL,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init service: %w", err)
	}
	return c, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("llm_provider", cfg.LLM.Provider),
		slog.String("drafts_backend", cfg.Drafts.Backend),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("uploads_path", cfg.Uploads.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := buildCore(app, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.svc, cfg.Auth.Resolver(), c.uploads, c.broker)

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

	// Uploaded references are linked from published briefs, so they stay public.
	r.Get(upload.RoutePrefix+"{filename}", api.NewUploadHandler(c.uploads).ServeFile)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch file-backed drafts for out-of-band edits.
	if c.fs != nil {
		g.Go(func() error {
			if err := c.fs.Watch(gCtx, logger, c.svc.HandleExternalChange); err != nil {
				logger.Warn("draft watcher stopped", slog.String("error", err.Error()))
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

// RunMCP serves the MCP tools over stdio until the client disconnects. Logs go
// to stderr because stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	slog.SetDefault(logger)

	c, err := buildCore(app, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	caller := app.config.Auth.Resolver().Anonymous()
	logger.Info("MCP server starting", slog.Bool("paid", caller.Paid))
	return mcpserver.New(c.svc, c.uploads, caller).ServeStdio()
}
