package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
	"github.com/Ringzero787/f1-fantasy-backend/internal/service"
)

// Recalculator re-fires the completion pipeline for one race.
type Recalculator interface {
	Recalculate(ctx context.Context, raceID string) error
}

// RaceHandler serves the manual recalculation trigger and per-race history.
type RaceHandler struct {
	trigger Recalculator
	markets *service.MarketService
	logger  *slog.Logger
}

// NewRaceHandler creates a RaceHandler.
func NewRaceHandler(trigger Recalculator, markets *service.MarketService, logger *slog.Logger) *RaceHandler {
	return &RaceHandler{trigger: trigger, markets: markets, logger: logger}
}

// Recalculate toggles a completed race's status so the pipeline runs again.
// POST /api/races/{id}/recalculate
func (h *RaceHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	raceID := r.PathValue("id")

	if err := h.trigger.Recalculate(r.Context(), raceID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "race not found")
		case errors.Is(err, domain.ErrNoResults):
			writeError(w, http.StatusPreconditionFailed, "race has no results")
		default:
			h.logger.ErrorContext(r.Context(), "handler: recalculation failed",
				slog.String("race_id", raceID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "recalculation failed")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"race_id":      raceID,
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// History returns every repricing row the race produced.
// GET /api/races/{id}/history
func (h *RaceHandler) History(w http.ResponseWriter, r *http.Request) {
	raceID := r.PathValue("id")

	records, err := h.markets.RaceHistory(r.Context(), raceID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: race history failed",
			slog.String("race_id", raceID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load race history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"race_id": raceID,
		"records": records,
		"count":   len(records),
	})
}
