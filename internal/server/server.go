// Package server assembles the HTTP API: routes, middleware chain, and
// server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ringzero787/f1-fantasy-backend/internal/server/handler"
	"github.com/Ringzero787/f1-fantasy-backend/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health  *handler.HealthHandler
	Races   *handler.RaceHandler
	Markets *handler.MarketHandler
	Leagues *handler.LeagueHandler
}

// Server is the HTTP API server for the fantasy backend.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered and the middleware
// chain (CORS, logging, auth) applied.
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	api := http.NewServeMux()

	// Race endpoints.
	api.HandleFunc("POST /api/races/{id}/recalculate", handlers.Races.Recalculate)
	api.HandleFunc("GET /api/races/{id}/history", handlers.Races.History)

	// Market endpoints.
	api.HandleFunc("GET /api/market/drivers", handlers.Markets.ListDrivers)
	api.HandleFunc("GET /api/market/drivers/{id}", handlers.Markets.GetDriver)
	api.HandleFunc("GET /api/market/constructors", handlers.Markets.ListConstructors)
	api.HandleFunc("GET /api/market/constructors/{id}", handlers.Markets.GetConstructor)
	api.HandleFunc("GET /api/market/{type}/{id}/history", handlers.Markets.History)

	// League and team endpoints.
	api.HandleFunc("GET /api/leagues/{id}/standings", handlers.Leagues.Standings)
	api.HandleFunc("GET /api/teams/{id}", handlers.Leagues.Team)

	// The health check stays outside the auth boundary so probes work
	// without credentials; everything else requires the API key.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.Handle("/", middleware.Auth(cfg.APIKey)(api))

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
