package domain

// LeagueMember is one user's standing inside a league. Rank is a dense
// ranking 1..N over the league's members ordered by TotalPoints descending,
// rewritten in full on every pipeline run.
type LeagueMember struct {
	LeagueID    string
	UserID      string
	TeamID      string
	TotalPoints int
	Rank        int
}
