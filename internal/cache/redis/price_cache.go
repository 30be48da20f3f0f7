package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis hashes. Each entity's
// price lives at "price:{type}:{id}" with fields "price" and "ts" (Unix
// nanoseconds). The pipeline refreshes it after every repricing commit;
// Postgres stays the source of truth.
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceCache creates a PriceCache backed by the given Client. ttl bounds
// staleness when refreshes stop arriving; zero keeps entries forever.
func NewPriceCache(c *Client, ttl time.Duration) *PriceCache {
	return &PriceCache{rdb: c.Underlying(), ttl: ttl}
}

func priceKey(entityType domain.EntityType, entityID string) string {
	return "price:" + string(entityType) + ":" + entityID
}

// SetPrice stores the latest price and timestamp for an entity.
func (pc *PriceCache) SetPrice(ctx context.Context, entityType domain.EntityType, entityID string, price float64, ts time.Time) error {
	key := priceKey(entityType, entityID)
	fields := map[string]any{
		"price": strconv.FormatFloat(price, 'f', -1, 64),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	}

	pipe := pc.rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	if pc.ttl > 0 {
		pipe.Expire(ctx, key, pc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set price %s: %w", entityID, err)
	}
	return nil
}

// GetPrice retrieves the cached price for an entity. The second return is
// false on a cache miss; a miss is not an error.
func (pc *PriceCache) GetPrice(ctx context.Context, entityType domain.EntityType, entityID string) (float64, bool, error) {
	vals, err := pc.rdb.HGetAll(ctx, priceKey(entityType, entityID)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("redis: get price %s: %w", entityID, err)
	}
	priceStr, ok := vals["price"]
	if !ok {
		return 0, false, nil
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis: parse price %s: %w", entityID, err)
	}
	return price, true, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
