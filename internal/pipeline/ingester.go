package pipeline

import (
	"fmt"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// Ingest extracts the per-driver classification from a completed race
// record. It returns domain.ErrNoResults when the race carries no race
// results; the caller treats that as a logged no-op rather than a failure.
func Ingest(race domain.Race) (domain.Classification, error) {
	if !race.HasResults() {
		return domain.Classification{}, fmt.Errorf("pipeline: ingest race %s: %w", race.ID, domain.ErrNoResults)
	}

	cls := domain.Classification{
		RaceID:        race.ID,
		TotalLaps:     race.TotalLaps,
		HasSprint:     len(race.Results.SprintResults) > 0,
		Race:          make(map[string]domain.RaceResult, len(race.Results.RaceResults)),
		Sprint:        make(map[string]domain.SprintResult, len(race.Results.SprintResults)),
		ByConstructor: make(map[string][]domain.RaceResult),
	}

	for _, r := range race.Results.RaceResults {
		cls.Race[r.DriverID] = r
		cls.ByConstructor[r.ConstructorID] = append(cls.ByConstructor[r.ConstructorID], r)
	}
	for _, s := range race.Results.SprintResults {
		cls.Sprint[s.DriverID] = s
	}

	return cls, nil
}
