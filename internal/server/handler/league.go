package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
	"github.com/Ringzero787/f1-fantasy-backend/internal/service"
)

// LeagueHandler serves league standings and team reads.
type LeagueHandler struct {
	leagues *service.LeagueService
	logger  *slog.Logger
}

// NewLeagueHandler creates a LeagueHandler.
func NewLeagueHandler(leagues *service.LeagueService, logger *slog.Logger) *LeagueHandler {
	return &LeagueHandler{leagues: leagues, logger: logger}
}

// Standings returns one league's members in standings order.
// GET /api/leagues/{id}/standings
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	leagueID := r.PathValue("id")

	members, err := h.leagues.Standings(r.Context(), leagueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "league not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: standings failed",
			slog.String("league_id", leagueID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load standings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"league_id": leagueID,
		"standings": members,
		"count":     len(members),
	})
}

// Team returns one fantasy team, roster and lock state included.
// GET /api/teams/{id}
func (h *LeagueHandler) Team(w http.ResponseWriter, r *http.Request) {
	teamID := r.PathValue("id")

	team, err := h.leagues.Team(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "team not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get team failed",
			slog.String("team_id", teamID), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load team")
		return
	}

	writeJSON(w, http.StatusOK, team)
}
