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

// TeamStore implements domain.TeamStore using PostgreSQL. Rosters live in
// JSONB columns; the pipeline rewrites them whole rather than patching
// individual slots.
type TeamStore struct {
	pool *pgxpool.Pool
}

// NewTeamStore creates a TeamStore backed by the given connection pool.
func NewTeamStore(pool *pgxpool.Pool) *TeamStore {
	return &TeamStore{pool: pool}
}

const teamCols = `id, user_id, name, drivers, constructor, total_points,
	budget, total_spent, ace_driver_id, ace_constructor_id,
	races_since_transfer, is_locked, lock_status, updated_at`

func scanTeam(row pgx.Row) (domain.FantasyTeam, error) {
	var (
		t           domain.FantasyTeam
		drivers     []byte
		constructor []byte
		lockStatus  []byte
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Name, &drivers, &constructor, &t.TotalPoints,
		&t.Budget, &t.TotalSpent, &t.AceDriverID, &t.AceConstructorID,
		&t.RacesSinceTransfer, &t.IsLocked, &lockStatus, &t.UpdatedAt,
	)
	if err != nil {
		return domain.FantasyTeam{}, err
	}
	if err := json.Unmarshal(drivers, &t.Drivers); err != nil {
		return domain.FantasyTeam{}, fmt.Errorf("decode drivers: %w", err)
	}
	if err := json.Unmarshal(constructor, &t.Constructor); err != nil {
		return domain.FantasyTeam{}, fmt.Errorf("decode constructor: %w", err)
	}
	if err := json.Unmarshal(lockStatus, &t.LockStatus); err != nil {
		return domain.FantasyTeam{}, fmt.Errorf("decode lock status: %w", err)
	}
	return t, nil
}

// GetTeam retrieves a single team by ID.
func (s *TeamStore) GetTeam(ctx context.Context, id string) (domain.FantasyTeam, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+teamCols+` FROM fantasy_teams WHERE id = $1`, id)
	t, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FantasyTeam{}, fmt.Errorf("postgres: team %s: %w", id, domain.ErrNotFound)
		}
		return domain.FantasyTeam{}, fmt.Errorf("postgres: get team %s: %w", id, err)
	}
	return t, nil
}

// ListTeams returns every fantasy team, ordered by ID for deterministic
// batching.
func (s *TeamStore) ListTeams(ctx context.Context) ([]domain.FantasyTeam, error) {
	return s.list(ctx, `SELECT `+teamCols+` FROM fantasy_teams ORDER BY id`)
}

// ListLockedTeams returns teams currently flagged as locked.
func (s *TeamStore) ListLockedTeams(ctx context.Context) ([]domain.FantasyTeam, error) {
	return s.list(ctx, `SELECT `+teamCols+` FROM fantasy_teams WHERE is_locked ORDER BY id`)
}

func (s *TeamStore) list(ctx context.Context, query string) ([]domain.FantasyTeam, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.FantasyTeam
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list teams rows: %w", err)
	}
	return teams, nil
}
