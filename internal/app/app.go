// Package app provides the top-level application lifecycle for the fantasy
// backend. It wires the stores, caches, blob storage, pipeline, and HTTP
// server, and starts the goroutines the configured operating mode needs.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ringzero787/f1-fantasy-backend/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, selects the
// operating mode, starts the corresponding goroutines, and blocks until the
// context is cancelled. On return it runs all registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case "watch":
		return a.WatchMode(ctx, deps)
	case "serve":
		return a.ServeMode(ctx, deps)
	case "full":
		return a.FullMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
