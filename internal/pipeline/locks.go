package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// releaseLocks is phase 5: unlock every team that was frozen for the race
// weekend. Season-long locks survive; only the weekend flag and its
// explanatory status are cleared.
func (p *Pipeline) releaseLocks(ctx context.Context) error {
	locked, err := p.teams.ListLockedTeams(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list locked teams: %w", err)
	}

	now := p.now()
	muts := make([]domain.Mutation, 0, len(locked))
	for _, team := range locked {
		if team.LockStatus.IsSeasonLocked {
			continue
		}
		muts = append(muts, domain.Mutation{
			Table: domain.TableTeams,
			Key:   map[string]any{"id": team.ID},
			Set: map[string]any{
				"is_locked": false,
				"lock_status": domain.LockStatus{
					CanModify: true,
				},
				"updated_at": now,
			},
		})
	}

	if err := p.batch.Apply(ctx, muts); err != nil {
		return fmt.Errorf("pipeline: release team locks: %w", err)
	}
	p.logger.Info("team locks released", slog.Int("teams", len(muts)))
	return nil
}
