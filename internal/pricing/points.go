// Package pricing recomputes market prices for drivers and constructors
// after a race. It runs its own point tables, separate from the scoring
// tables in internal/scoring: the two models have diverged over time and
// are intentionally not unified.
package pricing

import "github.com/Ringzero787/f1-fantasy-backend/internal/domain"

// racePoints awards pricing points for race positions P1..P10.
var racePoints = [10]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// sprintPoints awards pricing points for sprint positions P1..P8.
var sprintPoints = [8]int{8, 7, 6, 5, 4, 3, 2, 1}

// RaceLegPoints is a driver's pricing score for the race leg: the position
// table plus one point per position gained and the top-10 fastest-lap
// bonus. Retirements contribute nothing here; they are handled by the DNF
// price penalty instead.
func RaceLegPoints(r domain.RaceResult) int {
	if r.Status != domain.ResultFinished {
		return 0
	}
	pts := 0
	if r.Position >= 1 && r.Position <= len(racePoints) {
		pts = racePoints[r.Position-1]
	}
	if gained := r.GridPosition - r.Position; gained > 0 {
		pts += gained
	}
	if r.FastestLap && r.Position <= 10 {
		pts++
	}
	return pts
}

// SprintLegPoints is a driver's pricing score for the sprint leg.
func SprintLegPoints(s domain.SprintResult) int {
	if s.Status != domain.ResultFinished {
		return 0
	}
	if s.Position >= 1 && s.Position <= len(sprintPoints) {
		return sprintPoints[s.Position-1]
	}
	return 0
}

// DriverPoints is a driver's total pricing score for the weekend.
func DriverPoints(cls domain.Classification, driverID string) int {
	pts := 0
	if r, ok := cls.DriverResult(driverID); ok {
		pts += RaceLegPoints(r)
	}
	if s, ok := cls.SprintResult(driverID); ok {
		pts += SprintLegPoints(s)
	}
	return pts
}

// ConstructorPoints is a constructor's pricing score: the sum of its
// drivers' full weekend pricing scores.
func ConstructorPoints(cls domain.Classification, constructorID string) int {
	pts := 0
	for _, r := range cls.ConstructorResults(constructorID) {
		pts += DriverPoints(cls, r.DriverID)
	}
	return pts
}
