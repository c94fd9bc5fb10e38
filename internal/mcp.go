package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/eckolabs/ecko/internal/mcpserver"
	"github.com/eckolabs/ecko/internal/store"
)

// RunMCP starts the MCP stdio server over the same chat pipeline as the HTTP
// entrypoint. Logs go to stderr; stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	st, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()

	svc, _ := buildServices(cfg, st)

	logger.Info("MCP server starting on stdio", slog.String("sqlite_path", cfg.SQLite.Path))
	return mcpserver.New(svc, st).ServeStdio()
}
