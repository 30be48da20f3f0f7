package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// updateStandings is phase 4: credit each league membership with its team's
// scoring delta, then rebuild the full ranking of every affected league.
// Rankings are recomputed from a durable re-read so the increments committed
// in the first step are what get ordered, not in-memory arithmetic.
func (p *Pipeline) updateStandings(ctx context.Context, deltas map[string]int) error {
	members, err := p.leagues.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list league members: %w", err)
	}

	affected := make(map[string]struct{})
	muts := make([]domain.Mutation, 0, len(members))
	for _, m := range members {
		delta, ok := deltas[m.TeamID]
		if !ok || delta == 0 {
			continue
		}
		affected[m.LeagueID] = struct{}{}
		muts = append(muts, domain.Mutation{
			Table: domain.TableLeagueMembers,
			Key:   map[string]any{"league_id": m.LeagueID, "user_id": m.UserID},
			Inc:   map[string]any{"total_points": delta},
		})
	}
	if err := p.batch.Apply(ctx, muts); err != nil {
		return fmt.Errorf("pipeline: commit standings deltas: %w", err)
	}

	leagueIDs := make([]string, 0, len(affected))
	for id := range affected {
		leagueIDs = append(leagueIDs, id)
	}
	sort.Strings(leagueIDs)

	var rankMuts []domain.Mutation
	for _, leagueID := range leagueIDs {
		ranked, err := p.leagues.ListMembersByLeague(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("pipeline: list members of league %s: %w", leagueID, err)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].TotalPoints != ranked[j].TotalPoints {
				return ranked[i].TotalPoints > ranked[j].TotalPoints
			}
			return ranked[i].UserID < ranked[j].UserID
		})
		for i, m := range ranked {
			rank := i + 1
			if m.Rank == rank {
				continue
			}
			rankMuts = append(rankMuts, domain.Mutation{
				Table: domain.TableLeagueMembers,
				Key:   map[string]any{"league_id": m.LeagueID, "user_id": m.UserID},
				Set:   map[string]any{"rank": rank},
			})
		}
	}
	if err := p.batch.Apply(ctx, rankMuts); err != nil {
		return fmt.Errorf("pipeline: commit league ranks: %w", err)
	}
	return nil
}
