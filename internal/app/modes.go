package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ringzero787/f1-fantasy-backend/internal/pipeline"
	"github.com/Ringzero787/f1-fantasy-backend/internal/server"
	"github.com/Ringzero787/f1-fantasy-backend/internal/server/handler"
	"github.com/Ringzero787/f1-fantasy-backend/internal/service"
)

// buildPipeline assembles the race-completion pipeline and its watcher from
// the wired dependencies.
func (a *App) buildPipeline(deps *Dependencies) (*pipeline.Pipeline, *pipeline.Watcher) {
	pipe := pipeline.New(
		deps.RaceStore,
		deps.TeamStore,
		deps.MarketStore,
		deps.LeagueStore,
		deps.BatchWriter,
		a.logger,
		pipeline.WithWorkers(a.cfg.Pipeline.Workers),
		pipeline.WithPriceCache(deps.PriceCache),
	)

	var archiver pipeline.RaceArchiver
	if deps.Archiver != nil {
		archiver = deps.Archiver
	}
	watcher := pipeline.NewWatcher(
		deps.SignalBus,
		pipe,
		archiver,
		deps.LockManager,
		a.cfg.Pipeline.RunTimeout.Duration,
		a.logger,
	)
	return pipe, watcher
}

// buildServer assembles the HTTP server from the wired dependencies.
func (a *App) buildServer(deps *Dependencies) *server.Server {
	markets := service.NewMarketService(deps.MarketStore, deps.HistoryStore, deps.PriceCache, a.logger)
	leagues := service.NewLeagueService(deps.LeagueStore, deps.TeamStore)
	trigger := pipeline.NewTrigger(deps.RaceStore, deps.SignalBus, a.logger)

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(a.logger),
		Races:   handler.NewRaceHandler(trigger, markets, a.logger),
		Markets: handler.NewMarketHandler(markets, a.logger),
		Leagues: handler.NewLeagueHandler(leagues, a.logger),
	}

	return server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, a.logger)
}

// WatchMode runs only the pipeline watcher: races completed by the upstream
// results feed are processed, but no HTTP API is exposed.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	_, watcher := a.buildPipeline(deps)

	err := watcher.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("app: watcher: %w", err)
}

// ServeMode runs only the HTTP API. Manual recalculation triggers still
// publish status events; some other replica must be watching to act on them.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	srv := a.buildServer(deps)
	return a.runServer(ctx, srv)
}

// FullMode runs the watcher and the HTTP API together, each on its own
// goroutine under a shared errgroup.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	_, watcher := a.buildPipeline(deps)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := watcher.Run(ctx)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("app: watcher: %w", err)
	})

	if a.cfg.Server.Enabled {
		srv := a.buildServer(deps)
		g.Go(func() error {
			err := a.runServer(ctx, srv)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return err
		})
	}

	return g.Wait()
}

// runServer starts srv and shuts it down gracefully when ctx is cancelled.
func (a *App) runServer(ctx context.Context, srv *server.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
