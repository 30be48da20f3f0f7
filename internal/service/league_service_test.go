package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

type fakeLeagues struct {
	members map[string][]domain.LeagueMember
}

func (f *fakeLeagues) ListMembers(context.Context) ([]domain.LeagueMember, error) {
	var out []domain.LeagueMember
	for _, ms := range f.members {
		out = append(out, ms...)
	}
	return out, nil
}

func (f *fakeLeagues) ListMembersByLeague(_ context.Context, leagueID string) ([]domain.LeagueMember, error) {
	return f.members[leagueID], nil
}

type fakeTeams struct {
	teams map[string]domain.FantasyTeam
}

func (f *fakeTeams) ListTeams(context.Context) ([]domain.FantasyTeam, error) { return nil, nil }

func (f *fakeTeams) GetTeam(_ context.Context, id string) (domain.FantasyTeam, error) {
	t, ok := f.teams[id]
	if !ok {
		return domain.FantasyTeam{}, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTeams) ListLockedTeams(context.Context) ([]domain.FantasyTeam, error) { return nil, nil }

func TestStandings(t *testing.T) {
	leagues := &fakeLeagues{members: map[string][]domain.LeagueMember{
		"L1": {
			{LeagueID: "L1", UserID: "u1", TeamID: "t1", TotalPoints: 130, Rank: 1},
			{LeagueID: "L1", UserID: "u2", TeamID: "t2", TotalPoints: 125, Rank: 2},
		},
	}}
	svc := NewLeagueService(leagues, &fakeTeams{})

	got, err := svc.Standings(context.Background(), "L1")
	if err != nil {
		t.Fatalf("Standings() error = %v", err)
	}
	if len(got) != 2 || got[0].UserID != "u1" {
		t.Errorf("Standings() = %v", got)
	}
}

func TestStandingsUnknownLeague(t *testing.T) {
	svc := NewLeagueService(&fakeLeagues{members: map[string][]domain.LeagueMember{}}, &fakeTeams{})
	_, err := svc.Standings(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Standings() error = %v, want ErrNotFound", err)
	}
}

func TestTeam(t *testing.T) {
	teams := &fakeTeams{teams: map[string]domain.FantasyTeam{
		"t1": {ID: "t1", UserID: "u1", Budget: 824},
	}}
	svc := NewLeagueService(&fakeLeagues{}, teams)

	got, err := svc.Team(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Team() error = %v", err)
	}
	if got.Budget != 824 {
		t.Errorf("Budget = %v, want 824", got.Budget)
	}

	if _, err := svc.Team(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Team(ghost) error = %v, want ErrNotFound", err)
	}
}
