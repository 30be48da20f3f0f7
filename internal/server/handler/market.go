package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
	"github.com/Ringzero787/f1-fantasy-backend/internal/service"
)

// MarketHandler serves driver and constructor market reads.
type MarketHandler struct {
	markets *service.MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets *service.MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// ListDrivers returns every active driver.
// GET /api/market/drivers
func (h *MarketHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.markets.ListDrivers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list drivers failed",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list drivers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"drivers": drivers, "count": len(drivers)})
}

// GetDriver returns one driver.
// GET /api/market/drivers/{id}
func (h *MarketHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := h.markets.GetDriver(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "driver not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get driver failed",
			slog.String("driver_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load driver")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ListConstructors returns every active constructor.
// GET /api/market/constructors
func (h *MarketHandler) ListConstructors(w http.ResponseWriter, r *http.Request) {
	constructors, err := h.markets.ListConstructors(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list constructors failed",
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list constructors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"constructors": constructors, "count": len(constructors)})
}

// GetConstructor returns one constructor.
// GET /api/market/constructors/{id}
func (h *MarketHandler) GetConstructor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := h.markets.GetConstructor(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "constructor not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get constructor failed",
			slog.String("constructor_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load constructor")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// History returns one entity's price history, newest first. The {type} path
// segment is "driver" or "constructor".
// GET /api/market/{type}/{id}/history
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(r.PathValue("type"))
	if entityType != domain.EntityDriver && entityType != domain.EntityConstructor {
		writeError(w, http.StatusBadRequest, "entity type must be driver or constructor")
		return
	}
	id := r.PathValue("id")

	records, err := h.markets.History(r.Context(), entityType, id, queryLimit(r, 50))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: entity history failed",
			slog.String("entity_id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entity_type": entityType,
		"entity_id":   id,
		"records":     records,
		"count":       len(records),
	})
}
