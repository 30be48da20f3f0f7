package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// RaceStore implements domain.RaceStore using PostgreSQL.
type RaceStore struct {
	pool *pgxpool.Pool
}

// NewRaceStore creates a RaceStore backed by the given connection pool.
func NewRaceStore(pool *pgxpool.Pool) *RaceStore {
	return &RaceStore{pool: pool}
}

const raceCols = `id, name, round, status, total_laps, results, updated_at`

// GetRace retrieves a race by ID, including its embedded results document.
func (s *RaceStore) GetRace(ctx context.Context, id string) (domain.Race, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+raceCols+` FROM races WHERE id = $1`, id)

	var (
		r       domain.Race
		status  string
		results []byte
	)
	err := row.Scan(&r.ID, &r.Name, &r.Round, &status, &r.TotalLaps, &results, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Race{}, fmt.Errorf("postgres: race %s: %w", id, domain.ErrNotFound)
		}
		return domain.Race{}, fmt.Errorf("postgres: get race %s: %w", id, err)
	}
	r.Status = domain.RaceStatus(status)
	if len(results) > 0 {
		if err := json.Unmarshal(results, &r.Results); err != nil {
			return domain.Race{}, fmt.Errorf("postgres: decode results for race %s: %w", id, err)
		}
	}
	return r, nil
}

// SetStatus writes the race's status. Returns domain.ErrNotFound if no row
// matched.
func (s *RaceStore) SetStatus(ctx context.Context, id string, status domain.RaceStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE races SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("postgres: set race %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: race %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
