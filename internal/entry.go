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

	"github.com/eckolabs/ecko/internal/ai"
	"github.com/eckolabs/ecko/internal/api"
	"github.com/eckolabs/ecko/internal/chat"
	"github.com/eckolabs/ecko/internal/commands"
	"github.com/eckolabs/ecko/internal/reminder"
	"github.com/eckolabs/ecko/internal/search"
	"github.com/eckolabs/ecko/internal/sse"
	"github.com/eckolabs/ecko/internal/store"
)

// buildServices assembles the chat pipeline from configuration. Shared by the
// HTTP entrypoint and the MCP server command.
func buildServices(cfg *Config, st *store.SQLite) (*chat.Service, *reminder.Scheduler) {
	var client ai.Client
	if cfg.AI.Active() {
		client = ai.NewGroq(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout())
	}
	responder := ai.NewResponder(client, cfg.AI.HistoryWindow)

	var adapter *search.Adapter
	if cfg.Search.Enabled {
		ddg := search.NewDuckDuckGo(cfg.Search.Timeout())
		if cfg.Search.Provider == SearchProviderTavily && cfg.Search.APIKey != "" {
			adapter = search.NewAdapter(search.NewTavily(cfg.Search.APIKey, cfg.Search.Timeout()), ddg, cfg.Search.MaxResults)
		} else {
			adapter = search.NewAdapter(ddg, nil, cfg.Search.MaxResults)
		}
	}

	svc := chat.NewService(st, responder, adapter, commands.NewHandler(st))
	return svc, reminder.NewScheduler(st)
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

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("ai_active", cfg.AI.Active()),
		slog.Bool("search_enabled", cfg.Search.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize session store.
	st, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build the chat pipeline and API router.
	svc, scheduler := buildServices(cfg, st)
	h := api.NewHandler(svc, st, scheduler)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	readiness := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/health", readiness)
	r.Get("/health/ready", readiness)
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
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

	// Start reminder watcher with SSE callback.
	g.Go(func() error {
		scheduler.Watch(gCtx, 5*time.Second, logger, func(n store.Notification) {
			broker.PublishReminderDue(n.SessionID, n.ReminderID, n.Message)
		})
		return nil
	})

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
