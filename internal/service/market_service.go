// Package service holds the read-side application services behind the HTTP
// API. They compose the stores and caches; all pipeline writes go through
// the batch coordinator instead.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// MarketService serves market reads: current driver and constructor pricing
// plus per-entity price history.
type MarketService struct {
	markets domain.MarketStore
	history domain.HistoryStore
	cache   domain.PriceCache
	logger  *slog.Logger
}

// NewMarketService creates a MarketService. cache may be nil, in which case
// every price read comes straight from the store.
func NewMarketService(
	markets domain.MarketStore,
	history domain.HistoryStore,
	cache domain.PriceCache,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		markets: markets,
		history: history,
		cache:   cache,
		logger:  logger,
	}
}

// ListDrivers returns every active driver, prices overlaid from the cache.
func (s *MarketService) ListDrivers(ctx context.Context) ([]domain.MarketDriver, error) {
	drivers, err := s.markets.ListActiveDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("market_service: list drivers: %w", err)
	}
	for i := range drivers {
		drivers[i].Price = s.livePrice(ctx, domain.EntityDriver, drivers[i].ID, drivers[i].Price)
	}
	return drivers, nil
}

// ListConstructors returns every active constructor, prices overlaid from
// the cache.
func (s *MarketService) ListConstructors(ctx context.Context) ([]domain.MarketConstructor, error) {
	constructors, err := s.markets.ListActiveConstructors(ctx)
	if err != nil {
		return nil, fmt.Errorf("market_service: list constructors: %w", err)
	}
	for i := range constructors {
		constructors[i].Price = s.livePrice(ctx, domain.EntityConstructor, constructors[i].ID, constructors[i].Price)
	}
	return constructors, nil
}

// GetDriver retrieves one driver, its price overlaid from the cache.
func (s *MarketService) GetDriver(ctx context.Context, id string) (domain.MarketDriver, error) {
	d, err := s.markets.GetDriver(ctx, id)
	if err != nil {
		return domain.MarketDriver{}, fmt.Errorf("market_service: get driver %q: %w", id, err)
	}
	d.Price = s.livePrice(ctx, domain.EntityDriver, id, d.Price)
	return d, nil
}

// GetConstructor retrieves one constructor, its price overlaid from the cache.
func (s *MarketService) GetConstructor(ctx context.Context, id string) (domain.MarketConstructor, error) {
	c, err := s.markets.GetConstructor(ctx, id)
	if err != nil {
		return domain.MarketConstructor{}, fmt.Errorf("market_service: get constructor %q: %w", id, err)
	}
	c.Price = s.livePrice(ctx, domain.EntityConstructor, id, c.Price)
	return c, nil
}

// livePrice resolves the freshest known price for an entity: the cached
// value when the cache has one, the store's value otherwise. Cache failures
// degrade to the store price with a warning.
func (s *MarketService) livePrice(ctx context.Context, entityType domain.EntityType, entityID string, storePrice float64) float64 {
	if s.cache == nil {
		return storePrice
	}
	price, ok, err := s.cache.GetPrice(ctx, entityType, entityID)
	if err != nil {
		s.logger.WarnContext(ctx, "market_service: price cache read failed",
			slog.String("entity_id", entityID),
			slog.String("error", err.Error()),
		)
		return storePrice
	}
	if !ok {
		return storePrice
	}
	return price
}

// History returns an entity's price history, newest first.
func (s *MarketService) History(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]domain.PriceHistoryRecord, error) {
	records, err := s.history.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("market_service: history %s %q: %w", entityType, entityID, err)
	}
	return records, nil
}

// RaceHistory returns every repricing row a race produced.
func (s *MarketService) RaceHistory(ctx context.Context, raceID string) ([]domain.PriceHistoryRecord, error) {
	records, err := s.history.ListByRace(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("market_service: race history %q: %w", raceID, err)
	}
	return records, nil
}
