// Package scoring computes fantasy points for rosters from official race
// classifications. Its point tables are independent of the pricing tables in
// internal/pricing; the two are deliberately kept apart even where they look
// similar.
package scoring

import "github.com/Ringzero787/f1-fantasy-backend/internal/domain"

// racePoints awards the race leg for classified positions P1..P20.
var racePoints = [20]int{45, 40, 35, 32, 30, 28, 26, 24, 22, 20, 18, 16, 14, 12, 10, 8, 6, 4, 2, 1}

// sprintPoints awards the sprint leg for P1..P8.
var sprintPoints = [8]int{12, 10, 8, 6, 5, 4, 3, 2}

const (
	// retirePenalty applies to any DNF or DSQ leg, overriding all other
	// race-leg terms.
	retirePenalty = -5

	// fastestLapBonus applies when the fastest lap is set from a top-10
	// finish.
	fastestLapBonus = 1

	// seasonHoldRaces is a full season on the roster; holding that long
	// replaces the tiered lock bonus with a flat award.
	seasonHoldRaces = 24
	seasonHoldBonus = 100

	// AceMaxPrice is the tier-A price threshold: an ace pick whose live
	// market price exceeds it loses the 2x multiplier for the run.
	AceMaxPrice = 240

	// staleFreeRaces is how many races a team may go without a transfer
	// before the stale-roster penalty starts accruing.
	staleFreeRaces      = 5
	stalePenaltyPerRace = 5
)

// RaceLegPoints scores one driver's race leg: the position table plus the
// signed positions-gained term and the fastest-lap bonus. A DNF or DSQ leg
// scores the flat retirement penalty instead.
func RaceLegPoints(r domain.RaceResult) int {
	if r.Status != domain.ResultFinished {
		return retirePenalty
	}
	pts := 0
	if r.Position >= 1 && r.Position <= len(racePoints) {
		pts = racePoints[r.Position-1]
	}
	pts += r.GridPosition - r.Position
	if r.FastestLap && r.Position <= 10 {
		pts += fastestLapBonus
	}
	return pts
}

// SprintLegPoints scores one driver's sprint leg. Absent sprints contribute
// nothing; the caller simply skips this term.
func SprintLegPoints(s domain.SprintResult) int {
	if s.Status != domain.ResultFinished {
		return retirePenalty
	}
	if s.Position >= 1 && s.Position <= len(sprintPoints) {
		return sprintPoints[s.Position-1]
	}
	return 0
}

// LockBonus is the loyalty bonus for racesHeld consecutive races prior to
// this one: races 1-3 earn 1 each, 4-6 earn 2 each, 7+ earn 3 each. A full
// season held overrides the tiered sum with a flat bonus.
func LockBonus(racesHeld int) int {
	if racesHeld >= seasonHoldRaces {
		return seasonHoldBonus
	}
	bonus := 0
	for race := 1; race <= racesHeld; race++ {
		switch {
		case race <= 3:
			bonus++
		case race <= 6:
			bonus += 2
		default:
			bonus += 3
		}
	}
	return bonus
}

// ConstructorRacePoints scores a constructor's race leg: the position table
// over its drivers' finishing results only. No positions-gained term, no
// fastest lap, no sprint, and retirements contribute nothing here.
func ConstructorRacePoints(results []domain.RaceResult) int {
	pts := 0
	for _, r := range results {
		if r.Status != domain.ResultFinished {
			continue
		}
		if r.Position >= 1 && r.Position <= len(racePoints) {
			pts += racePoints[r.Position-1]
		}
	}
	return pts
}

// StalePenalty is deducted from a team's run total when it has gone more
// than staleFreeRaces races without a transfer, 5 points per excess race.
// The input is the pre-increment racesSinceTransfer value.
func StalePenalty(racesSinceTransfer int) int {
	if racesSinceTransfer <= staleFreeRaces {
		return 0
	}
	return (racesSinceTransfer - staleFreeRaces) * stalePenaltyPerRace
}
