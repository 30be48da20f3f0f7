package domain

import "time"

// RaceStatus is the lifecycle state of a race. The completion pipeline fires
// on the transition into StatusCompleted.
type RaceStatus string

const (
	StatusUpcoming   RaceStatus = "upcoming"
	StatusInProgress RaceStatus = "in_progress"
	StatusCompleted  RaceStatus = "completed"
)

// ResultStatus classifies how a driver's race (or sprint) leg ended.
type ResultStatus string

const (
	ResultFinished ResultStatus = "finished"
	ResultDNF      ResultStatus = "dnf"
	ResultDSQ      ResultStatus = "dsq"
)

// RaceResult is one driver's official classification for the race leg.
// Immutable once the race is completed.
type RaceResult struct {
	Position      int          `json:"position"`
	DriverID      string       `json:"driverId"`
	ConstructorID string       `json:"constructorId"`
	GridPosition  int          `json:"gridPosition"`
	Status        ResultStatus `json:"status"`
	FastestLap    bool         `json:"fastestLap"`
	Laps          int          `json:"laps"`
}

// SprintResult is one driver's sprint classification. Sprint results are
// absent on non-sprint weekends.
type SprintResult struct {
	Position int          `json:"position"`
	DriverID string       `json:"driverId"`
	Status   ResultStatus `json:"status"`
}

// RaceResults is the results document embedded in a race record.
type RaceResults struct {
	RaceResults   []RaceResult   `json:"raceResults"`
	SprintResults []SprintResult `json:"sprintResults,omitempty"`
}

// Race is a round of the season. The pipeline reads it; only the manual
// re-trigger path writes it (status toggling).
type Race struct {
	ID        string
	Name      string
	Round     int
	Status    RaceStatus
	TotalLaps int
	Results   RaceResults
	UpdatedAt time.Time
}

// HasResults reports whether the race carries a non-empty race classification.
// Sprint results alone are not enough to run the pipeline.
func (r Race) HasResults() bool {
	return len(r.Results.RaceResults) > 0
}

// StatusChannel is the signal bus channel carrying StatusEvents.
const StatusChannel = "races.status"

// StatusEvent is published on the signal bus whenever a race's status field
// is written. The pipeline watcher reacts to transitions into completed.
type StatusEvent struct {
	RaceID    string     `json:"raceId"`
	Old       RaceStatus `json:"old"`
	New       RaceStatus `json:"new"`
	Timestamp time.Time  `json:"ts"`
}

// Completed reports whether this event is a transition into the completed
// state, i.e. one that should trigger a pipeline run.
func (e StatusEvent) Completed() bool {
	return e.New == StatusCompleted && e.Old != StatusCompleted
}
