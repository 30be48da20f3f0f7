// Package pipeline implements the race-completion batch process: scoring,
// repricing, roster valuation, league re-ranking, and lock release, run as
// five strictly sequential phases over durable state. Later phases re-read
// what earlier phases committed instead of trusting in-memory results, so a
// partially applied run can be reasoned about from the store alone.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
	"github.com/Ringzero787/f1-fantasy-backend/internal/pricing"
	"github.com/Ringzero787/f1-fantasy-backend/internal/scoring"
)

// Pipeline coordinates the five phases of a race-completion run. Only the
// race ID travels between phases; every phase reads its inputs fresh from
// the stores.
type Pipeline struct {
	races   domain.RaceStore
	teams   domain.TeamStore
	markets domain.MarketStore
	leagues domain.LeagueStore
	batch   domain.BatchWriter
	scorer  *scoring.Engine
	cache   domain.PriceCache // optional
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the per-phase scoring parallelism.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPriceCache attaches a read-side price cache that is refreshed after
// the repricing phase commits.
func WithPriceCache(c domain.PriceCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Pipeline over the given stores and batch writer.
func New(
	races domain.RaceStore,
	teams domain.TeamStore,
	markets domain.MarketStore,
	leagues domain.LeagueStore,
	batch domain.BatchWriter,
	logger *slog.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		races:   races,
		teams:   teams,
		markets: markets,
		leagues: leagues,
		batch:   batch,
		scorer:  scoring.NewEngine(markets, logger),
		logger:  logger.With(slog.String("component", "pipeline")),
		workers: 8,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full race-completion pass. A write failure in any phase
// aborts the remaining phases; chunks already committed stay applied. There
// is no reentrancy guard: a duplicate trigger re-runs everything, including
// the increment mutations.
func (p *Pipeline) Run(ctx context.Context, raceID string) error {
	started := p.now()

	race, err := p.races.GetRace(ctx, raceID)
	if err != nil {
		return fmt.Errorf("pipeline: load race %s: %w", raceID, err)
	}

	cls, err := Ingest(race)
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			p.logger.Info("race has no results yet, skipping run",
				slog.String("race_id", raceID),
			)
			return nil
		}
		return err
	}

	p.logger.Info("pipeline run starting",
		slog.String("race_id", raceID),
		slog.Int("classified_drivers", len(cls.Race)),
		slog.Bool("sprint", cls.HasSprint),
	)

	deltas, err := p.scoreTeams(ctx, cls)
	if err != nil {
		return err
	}
	if err := p.repriceMarket(ctx, cls); err != nil {
		return err
	}
	if err := p.syncValuations(ctx); err != nil {
		return err
	}
	if err := p.updateStandings(ctx, deltas); err != nil {
		return err
	}
	if err := p.releaseLocks(ctx); err != nil {
		return err
	}

	p.logger.Info("pipeline run complete",
		slog.String("race_id", raceID),
		slog.Int("teams_scored", len(deltas)),
		slog.Duration("elapsed", p.now().Sub(started)),
	)
	return nil
}

// scoreTeams is phase 1: score every fantasy roster and commit the point
// deltas. Per-team computation is independent and runs on a bounded worker
// group; all writes are aggregated before batching. Returns team ID to
// point delta for the ranking phase.
func (p *Pipeline) scoreTeams(ctx context.Context, cls domain.Classification) (map[string]int, error) {
	teams, err := p.teams.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list teams: %w", err)
	}
	if len(teams) == 0 {
		return map[string]int{}, nil
	}

	scores := make([]scoring.TeamScore, len(teams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, team := range teams {
		g.Go(func() error {
			score, err := p.scorer.ScoreTeam(gctx, team, cls)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := p.now()
	deltas := make(map[string]int, len(scores))
	muts := make([]domain.Mutation, 0, len(scores))
	for _, s := range scores {
		deltas[s.TeamID] = s.Delta
		muts = append(muts, domain.Mutation{
			Table: domain.TableTeams,
			Key:   map[string]any{"id": s.TeamID},
			Set: map[string]any{
				"drivers":     s.Drivers,
				"constructor": s.Constructor,
				"updated_at":  now,
			},
			Inc: map[string]any{
				"total_points":         s.Delta,
				"races_since_transfer": 1,
			},
		})
	}

	if err := p.batch.Apply(ctx, muts); err != nil {
		return nil, fmt.Errorf("pipeline: commit scores: %w", err)
	}
	return deltas, nil
}

// repriceMarket is phase 2: recompute every active entity's price, append
// its immutable history row, and refresh the read-side cache after the
// commit.
func (p *Pipeline) repriceMarket(ctx context.Context, cls domain.Classification) error {
	drivers, err := p.markets.ListActiveDrivers(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list active drivers: %w", err)
	}
	constructors, err := p.markets.ListActiveConstructors(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list active constructors: %w", err)
	}

	now := p.now()
	muts := make([]domain.Mutation, 0, 2*(len(drivers)+len(constructors)))
	type cached struct {
		typ   domain.EntityType
		id    string
		price float64
	}
	refresh := make([]cached, 0, len(drivers)+len(constructors))

	for _, d := range drivers {
		rp := pricing.RepriceDriver(d, cls)
		muts = append(muts,
			domain.Mutation{
				Table: domain.TableDrivers,
				Key:   map[string]any{"id": d.ID},
				Set: map[string]any{
					"price":          rp.NewPrice,
					"previous_price": d.Price,
					"tier":           string(pricing.ClassifyTier(rp.NewPrice)),
					"updated_at":     now,
				},
				Inc: map[string]any{"fantasy_points": rp.Points},
			},
			historyMutation(domain.EntityDriver, d.ID, d.Price, rp, cls.RaceID, now),
		)
		refresh = append(refresh, cached{domain.EntityDriver, d.ID, rp.NewPrice})
	}

	for _, c := range constructors {
		rp := pricing.RepriceConstructor(c, cls)
		muts = append(muts,
			domain.Mutation{
				Table: domain.TableConstructors,
				Key:   map[string]any{"id": c.ID},
				Set: map[string]any{
					"price":          rp.NewPrice,
					"previous_price": c.Price,
					"updated_at":     now,
				},
				Inc: map[string]any{"fantasy_points": rp.Points},
			},
			historyMutation(domain.EntityConstructor, c.ID, c.Price, rp, cls.RaceID, now),
		)
		refresh = append(refresh, cached{domain.EntityConstructor, c.ID, rp.NewPrice})
	}

	if err := p.batch.Apply(ctx, muts); err != nil {
		return fmt.Errorf("pipeline: commit prices: %w", err)
	}

	// Cache refresh is best-effort; the store stays the source of truth.
	if p.cache != nil {
		for _, c := range refresh {
			if err := p.cache.SetPrice(ctx, c.typ, c.id, c.price, now); err != nil {
				p.logger.Warn("price cache refresh failed",
					slog.String("entity_id", c.id),
					slog.String("error", err.Error()),
				)
				break
			}
		}
	}
	return nil
}

// historyMutation builds the append-only price history row for one
// repriced entity.
func historyMutation(typ domain.EntityType, id string, oldPrice float64, rp pricing.Reprice, raceID string, now time.Time) domain.Mutation {
	return domain.Mutation{
		Table:  domain.TablePriceHistory,
		Insert: true,
		Set: map[string]any{
			"id":                 uuid.NewString(),
			"entity_id":          id,
			"entity_type":        string(typ),
			"price":              rp.NewPrice,
			"previous_price":     oldPrice,
			"change":             rp.NewPrice - oldPrice,
			"performance_change": rp.PerfDelta,
			"dnf_penalty":        rp.DNFPenalty,
			"points":             rp.Points,
			"race_id":            raceID,
			"created_at":         now,
		},
	}
}
