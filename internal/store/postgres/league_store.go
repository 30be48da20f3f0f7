package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// LeagueStore implements domain.LeagueStore using PostgreSQL.
type LeagueStore struct {
	pool *pgxpool.Pool
}

// NewLeagueStore creates a LeagueStore backed by the given connection pool.
func NewLeagueStore(pool *pgxpool.Pool) *LeagueStore {
	return &LeagueStore{pool: pool}
}

const memberCols = `league_id, user_id, team_id, total_points, rank`

// ListMembers returns every league membership across all leagues.
func (s *LeagueStore) ListMembers(ctx context.Context) ([]domain.LeagueMember, error) {
	return s.list(ctx,
		`SELECT `+memberCols+` FROM league_members ORDER BY league_id, user_id`)
}

// ListMembersByLeague returns one league's memberships in standings order:
// points descending, user ID ascending as the deterministic tie-break.
func (s *LeagueStore) ListMembersByLeague(ctx context.Context, leagueID string) ([]domain.LeagueMember, error) {
	return s.list(ctx,
		`SELECT `+memberCols+` FROM league_members
		 WHERE league_id = $1 ORDER BY total_points DESC, user_id`, leagueID)
}

func (s *LeagueStore) list(ctx context.Context, query string, args ...any) ([]domain.LeagueMember, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list league members: %w", err)
	}
	defer rows.Close()

	var members []domain.LeagueMember
	for rows.Next() {
		var m domain.LeagueMember
		if err := rows.Scan(&m.LeagueID, &m.UserID, &m.TeamID, &m.TotalPoints, &m.Rank); err != nil {
			return nil, fmt.Errorf("postgres: scan league member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list league members rows: %w", err)
	}
	return members, nil
}
