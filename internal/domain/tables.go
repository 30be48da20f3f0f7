package domain

// Persisted collection names, shared by the stores and the mutation
// builders in the pipeline.
const (
	TableRaces         = "races"
	TableTeams         = "fantasy_teams"
	TableDrivers       = "market_drivers"
	TableConstructors  = "market_constructors"
	TableLeagueMembers = "league_members"
	TablePriceHistory  = "price_history"
)
