package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// HistoryStore implements domain.HistoryStore using PostgreSQL. It only
// reads; history rows are appended through the batch writer as part of the
// repricing commit.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore creates a HistoryStore backed by the given connection pool.
func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

const historyCols = `id, entity_id, entity_type, price, previous_price,
	change, performance_change, dnf_penalty, points, race_id, created_at`

// ListByRace returns every history row written for one race.
func (s *HistoryStore) ListByRace(ctx context.Context, raceID string) ([]domain.PriceHistoryRecord, error) {
	return s.list(ctx,
		`SELECT `+historyCols+` FROM price_history
		 WHERE race_id = $1 ORDER BY entity_type, entity_id`, raceID)
}

// ListByEntity returns one entity's history, newest first, capped at limit
// when it is positive.
func (s *HistoryStore) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]domain.PriceHistoryRecord, error) {
	query := `SELECT ` + historyCols + ` FROM price_history
		WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at DESC`
	args := []any{string(entityType), entityID}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	return s.list(ctx, query, args...)
}

func (s *HistoryStore) list(ctx context.Context, query string, args ...any) ([]domain.PriceHistoryRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list price history: %w", err)
	}
	defer rows.Close()

	var records []domain.PriceHistoryRecord
	for rows.Next() {
		var (
			r   domain.PriceHistoryRecord
			typ string
		)
		if err := rows.Scan(
			&r.ID, &r.EntityID, &typ, &r.Price, &r.PreviousPrice,
			&r.Change, &r.PerformanceChange, &r.DNFPenalty, &r.Points,
			&r.RaceID, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan price history: %w", err)
		}
		r.EntityType = domain.EntityType(typ)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list price history rows: %w", err)
	}
	return records, nil
}
