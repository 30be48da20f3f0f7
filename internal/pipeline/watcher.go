package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// RaceArchiver exports the artifacts of a completed race to cold storage.
type RaceArchiver interface {
	ArchiveRace(ctx context.Context, raceID string) error
}

// runLockKey is the distributed mutex key taken around a pipeline run so
// watcher replicas never process the same completion concurrently.
const runLockKey = "pipeline:run"

// Watcher subscribes to race status events and runs the completion pipeline
// whenever a race transitions into completed.
type Watcher struct {
	bus        domain.SignalBus
	pipe       *Pipeline
	archiver   RaceArchiver
	locks      domain.LockManager
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewWatcher creates a Watcher. archiver may be nil to disable cold-storage
// export; locks may be nil when only one watcher replica runs. runTimeout
// bounds a single pipeline run; zero means no bound.
func NewWatcher(bus domain.SignalBus, pipe *Pipeline, archiver RaceArchiver, locks domain.LockManager, runTimeout time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		bus:        bus,
		pipe:       pipe,
		archiver:   archiver,
		locks:      locks,
		runTimeout: runTimeout,
		logger:     logger.With(slog.String("component", "watcher")),
	}
}

// Run consumes status events until ctx is cancelled. Events are processed one
// at a time: a run triggered by one race finishes before the next event is
// looked at, so two pipeline runs never interleave.
func (w *Watcher) Run(ctx context.Context) error {
	events, err := w.bus.Subscribe(ctx, domain.StatusChannel)
	if err != nil {
		return fmt.Errorf("pipeline: subscribe %s: %w", domain.StatusChannel, err)
	}
	w.logger.Info("watching race status events", slog.String("channel", domain.StatusChannel))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()
		case payload, ok := <-events:
			if !ok {
				return fmt.Errorf("pipeline: status subscription closed")
			}
			var event domain.StatusEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				w.logger.Warn("discarding malformed status event", slog.String("error", err.Error()))
				continue
			}
			if !event.Completed() {
				continue
			}
			w.handle(ctx, event)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event domain.StatusEvent) {
	runCtx := ctx
	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}

	if w.locks != nil {
		ttl := w.runTimeout
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		unlock, err := w.locks.Acquire(runCtx, runLockKey, ttl)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				w.logger.Warn("pipeline run already in progress elsewhere, skipping",
					slog.String("race_id", event.RaceID),
				)
				return
			}
			w.logger.Error("acquire run lock failed",
				slog.String("race_id", event.RaceID),
				slog.String("error", err.Error()),
			)
			return
		}
		defer unlock()
	}

	w.logger.Info("race completed, running pipeline",
		slog.String("race_id", event.RaceID),
		slog.String("old", string(event.Old)),
	)

	if err := w.pipe.Run(runCtx, event.RaceID); err != nil {
		w.logger.Error("pipeline run failed",
			slog.String("race_id", event.RaceID),
			slog.String("error", err.Error()),
		)
		return
	}

	if w.archiver == nil {
		return
	}
	if err := w.archiver.ArchiveRace(runCtx, event.RaceID); err != nil {
		// Archival is best effort; the pipeline's writes already committed.
		w.logger.Warn("race archival failed",
			slog.String("race_id", event.RaceID),
			slog.String("error", err.Error()),
		)
	}
}
