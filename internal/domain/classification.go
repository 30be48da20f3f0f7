package domain

// Classification is the per-driver view of a completed race's results,
// extracted once by the result ingester and consumed by the scoring and
// pricing engines.
type Classification struct {
	RaceID    string
	TotalLaps int
	HasSprint bool

	// Race and Sprint index results by driver ID.
	Race   map[string]RaceResult
	Sprint map[string]SprintResult

	// ByConstructor groups race results by constructor ID.
	ByConstructor map[string][]RaceResult
}

// DriverResult returns the race-leg result for a driver, if classified.
func (c Classification) DriverResult(driverID string) (RaceResult, bool) {
	r, ok := c.Race[driverID]
	return r, ok
}

// SprintResult returns the sprint-leg result for a driver, if present.
func (c Classification) SprintResult(driverID string) (SprintResult, bool) {
	s, ok := c.Sprint[driverID]
	return s, ok
}

// ConstructorResults returns the race-leg results of a constructor's drivers.
func (c Classification) ConstructorResults(constructorID string) []RaceResult {
	return c.ByConstructor[constructorID]
}
