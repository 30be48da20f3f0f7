package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// AcePriceLookup resolves the live market price of an ace candidate. The
// engine re-reads prices per team rather than trusting the roster's cached
// copy, so a stale client-set ace cannot keep the multiplier after a price
// rise.
type AcePriceLookup interface {
	GetDriver(ctx context.Context, id string) (domain.MarketDriver, error)
	GetConstructor(ctx context.Context, id string) (domain.MarketConstructor, error)
}

// Engine scores one team's roster against a race classification.
type Engine struct {
	markets AcePriceLookup
	logger  *slog.Logger
}

// NewEngine creates a scoring Engine.
func NewEngine(markets AcePriceLookup, logger *slog.Logger) *Engine {
	return &Engine{
		markets: markets,
		logger:  logger.With(slog.String("component", "scoring")),
	}
}

// TeamScore is the outcome of scoring one team for one race: the additive
// point delta and the updated roster documents with incremented cumulative
// counters.
type TeamScore struct {
	TeamID      string
	Delta       int
	Drivers     []domain.RosterDriver
	Constructor domain.RosterConstructor
}

// ScoreTeam computes the team's point delta for the race. Every roster
// driver and the constructor are scored against the classification; the ace
// multiplier is applied only after its price eligibility has been
// re-validated against the live market.
func (e *Engine) ScoreTeam(ctx context.Context, team domain.FantasyTeam, cls domain.Classification) (TeamScore, error) {
	out := TeamScore{
		TeamID:      team.ID,
		Drivers:     make([]domain.RosterDriver, len(team.Drivers)),
		Constructor: team.Constructor,
	}

	total := 0
	for i, d := range team.Drivers {
		pts := e.driverPoints(d, cls)
		if team.AceDriverID != "" && d.DriverID == team.AceDriverID {
			ok, err := e.aceDriverEligible(ctx, team, d.DriverID)
			if err != nil {
				return TeamScore{}, err
			}
			if ok {
				pts *= 2
			}
		}

		d.PointsScored += pts
		d.RacesHeld++
		out.Drivers[i] = d
		total += pts
	}

	cpts := ConstructorRacePoints(cls.ConstructorResults(team.Constructor.ConstructorID))
	cpts += LockBonus(team.Constructor.RacesHeld)
	if team.Constructor.ConstructorID == team.AceConstructorID && team.AceConstructorID != "" {
		ok, err := e.aceConstructorEligible(ctx, team)
		if err != nil {
			return TeamScore{}, err
		}
		if ok {
			cpts *= 2
		}
	}
	out.Constructor.PointsScored += cpts
	out.Constructor.RacesHeld++
	total += cpts

	total -= StalePenalty(team.RacesSinceTransfer)

	out.Delta = total
	return out, nil
}

// driverPoints is the full pre-multiplier score for one roster driver: race
// leg, sprint leg when present, and the lock bonus on the races held before
// this one. A driver not classified at all contributes only the lock bonus.
func (e *Engine) driverPoints(d domain.RosterDriver, cls domain.Classification) int {
	pts := 0
	if r, ok := cls.DriverResult(d.DriverID); ok {
		pts += RaceLegPoints(r)
	}
	if s, ok := cls.SprintResult(d.DriverID); ok {
		pts += SprintLegPoints(s)
	}
	return pts + LockBonus(d.RacesHeld)
}

// aceDriverEligible re-checks the ace driver's live price against the
// tier-A threshold. Violations are corrected locally and logged as
// warnings, never surfaced as errors; a missing market record also drops
// the multiplier.
func (e *Engine) aceDriverEligible(ctx context.Context, team domain.FantasyTeam, driverID string) (bool, error) {
	md, err := e.markets.GetDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Warn("ace driver missing from market, dropping multiplier",
				slog.String("team_id", team.ID),
				slog.String("driver_id", driverID),
			)
			return false, nil
		}
		return false, fmt.Errorf("scoring: validate ace driver %s: %w", driverID, err)
	}
	if md.Price > AceMaxPrice {
		e.logger.Warn("ace driver no longer price-eligible, dropping multiplier",
			slog.String("team_id", team.ID),
			slog.String("driver_id", driverID),
			slog.Float64("price", md.Price),
		)
		return false, nil
	}
	return true, nil
}

func (e *Engine) aceConstructorEligible(ctx context.Context, team domain.FantasyTeam) (bool, error) {
	mc, err := e.markets.GetConstructor(ctx, team.AceConstructorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.logger.Warn("ace constructor missing from market, dropping multiplier",
				slog.String("team_id", team.ID),
				slog.String("constructor_id", team.AceConstructorID),
			)
			return false, nil
		}
		return false, fmt.Errorf("scoring: validate ace constructor %s: %w", team.AceConstructorID, err)
	}
	if mc.Price > AceMaxPrice {
		e.logger.Warn("ace constructor no longer price-eligible, dropping multiplier",
			slog.String("team_id", team.ID),
			slog.String("constructor_id", team.AceConstructorID),
			slog.Float64("price", mc.Price),
		)
		return false, nil
	}
	return true, nil
}
