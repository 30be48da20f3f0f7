package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// StartingBudget is every team's season-opening budget.
const StartingBudget = 1000

// syncValuations is phase 3: propagate the freshly committed market prices
// into every roster and recompute each team's spendable budget. Teams are
// re-read rather than reusing phase 1's in-memory copies, so the cached
// roster prices this phase overwrites are the durable ones.
func (p *Pipeline) syncValuations(ctx context.Context) error {
	teams, err := p.teams.ListTeams(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list teams for valuation: %w", err)
	}

	drivers, err := p.markets.ListActiveDrivers(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list drivers for valuation: %w", err)
	}
	constructors, err := p.markets.ListActiveConstructors(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list constructors for valuation: %w", err)
	}

	driverPrice := make(map[string]float64, len(drivers))
	for _, d := range drivers {
		driverPrice[d.ID] = d.Price
	}
	constructorPrice := make(map[string]float64, len(constructors))
	for _, c := range constructors {
		constructorPrice[c.ID] = c.Price
	}

	now := p.now()
	muts := make([]domain.Mutation, 0, len(teams))
	for _, team := range teams {
		for i, d := range team.Drivers {
			if price, ok := driverPrice[d.DriverID]; ok {
				team.Drivers[i].CurrentPrice = price
			} else {
				// Entity left the market; keep the stale cached price.
				p.logger.Warn("roster driver missing from market, keeping cached price",
					slog.String("team_id", team.ID),
					slog.String("driver_id", d.DriverID),
				)
			}
		}
		if price, ok := constructorPrice[team.Constructor.ConstructorID]; ok {
			team.Constructor.CurrentPrice = price
		} else {
			p.logger.Warn("roster constructor missing from market, keeping cached price",
				slog.String("team_id", team.ID),
				slog.String("constructor_id", team.Constructor.ConstructorID),
			)
		}

		budget := math.Round(StartingBudget - team.TotalSpent + (team.RosterValue() - team.PurchaseValue()))
		muts = append(muts, domain.Mutation{
			Table: domain.TableTeams,
			Key:   map[string]any{"id": team.ID},
			Set: map[string]any{
				"drivers":     team.Drivers,
				"constructor": team.Constructor,
				"budget":      budget,
				"updated_at":  now,
			},
		})
	}

	if err := p.batch.Apply(ctx, muts); err != nil {
		return fmt.Errorf("pipeline: commit valuations: %w", err)
	}
	return nil
}
