package service

import (
	"context"
	"fmt"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// LeagueService serves league standings reads.
type LeagueService struct {
	leagues domain.LeagueStore
	teams   domain.TeamStore
}

// NewLeagueService creates a LeagueService.
func NewLeagueService(leagues domain.LeagueStore, teams domain.TeamStore) *LeagueService {
	return &LeagueService{leagues: leagues, teams: teams}
}

// Standings returns one league's members in standings order, points
// descending with user ID as the tie-break.
func (s *LeagueService) Standings(ctx context.Context, leagueID string) ([]domain.LeagueMember, error) {
	members, err := s.leagues.ListMembersByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("league_service: standings %q: %w", leagueID, err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("league_service: league %q: %w", leagueID, domain.ErrNotFound)
	}
	return members, nil
}

// Team retrieves one fantasy team, lock state and roster included.
func (s *LeagueService) Team(ctx context.Context, teamID string) (domain.FantasyTeam, error) {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return domain.FantasyTeam{}, fmt.Errorf("league_service: team %q: %w", teamID, err)
	}
	return team, nil
}
