package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// Trigger forces a recalculation of an already-completed race by toggling its
// status away from completed and back, which the watcher observes as a fresh
// completion. Recalculation therefore exercises exactly the same code path as
// an organic race finish.
type Trigger struct {
	races  domain.RaceStore
	bus    domain.SignalBus
	logger *slog.Logger
	now    func() time.Time
}

// NewTrigger creates a manual recalculation trigger.
func NewTrigger(races domain.RaceStore, bus domain.SignalBus, logger *slog.Logger) *Trigger {
	return &Trigger{
		races:  races,
		bus:    bus,
		logger: logger.With(slog.String("component", "trigger")),
		now:    time.Now,
	}
}

// Recalculate re-fires the completion pipeline for raceID. The race must
// exist and carry race results; otherwise domain.ErrNotFound or
// domain.ErrNoResults is returned and nothing is toggled.
func (t *Trigger) Recalculate(ctx context.Context, raceID string) error {
	race, err := t.races.GetRace(ctx, raceID)
	if err != nil {
		return fmt.Errorf("pipeline: load race for recalculation: %w", err)
	}
	if !race.HasResults() {
		return fmt.Errorf("pipeline: race %s: %w", raceID, domain.ErrNoResults)
	}

	t.logger.Info("manual recalculation requested",
		slog.String("race_id", raceID),
		slog.String("status", string(race.Status)),
	)

	if err := t.transition(ctx, raceID, race.Status, domain.StatusInProgress); err != nil {
		return err
	}
	return t.transition(ctx, raceID, domain.StatusInProgress, domain.StatusCompleted)
}

// transition writes the new status and publishes the matching event. The
// store write comes first so a subscriber that re-reads the race always sees
// the status the event describes.
func (t *Trigger) transition(ctx context.Context, raceID string, from, to domain.RaceStatus) error {
	if err := t.races.SetStatus(ctx, raceID, to); err != nil {
		return fmt.Errorf("pipeline: set race %s status %s: %w", raceID, to, err)
	}
	payload, err := json.Marshal(domain.StatusEvent{
		RaceID:    raceID,
		Old:       from,
		New:       to,
		Timestamp: t.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("pipeline: encode status event: %w", err)
	}
	if err := t.bus.Publish(ctx, domain.StatusChannel, payload); err != nil {
		return fmt.Errorf("pipeline: publish status event: %w", err)
	}
	return nil
}
