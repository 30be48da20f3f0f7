package domain

import "time"

// RosterDriver is a driver slot embedded in a fantasy team document.
// PointsScored and RacesHeld only ever increase, once per completed race the
// driver was held for. CurrentPrice is a cached copy of the canonical market
// price, refreshed by the valuation phase after every repricing.
type RosterDriver struct {
	DriverID       string  `json:"driverId"`
	Name           string  `json:"name"`
	PurchasePrice  float64 `json:"purchasePrice"`
	CurrentPrice   float64 `json:"currentPrice"`
	PointsScored   int     `json:"pointsScored"`
	RacesHeld      int     `json:"racesHeld"`
	ContractLength int     `json:"contractLength"`
	IsReservePick  bool    `json:"isReservePick"`
}

// RosterConstructor is the constructor slot embedded in a fantasy team.
type RosterConstructor struct {
	ConstructorID string  `json:"constructorId"`
	Name          string  `json:"name"`
	PurchasePrice float64 `json:"purchasePrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	PointsScored  int     `json:"pointsScored"`
	RacesHeld     int     `json:"racesHeld"`
}

// LockStatus describes why a team is currently not editable.
type LockStatus struct {
	CanModify      bool       `json:"canModify"`
	IsSeasonLocked bool       `json:"isSeasonLocked"`
	LockReason     string     `json:"lockReason,omitempty"`
	NextUnlockTime *time.Time `json:"nextUnlockTime,omitempty"`
}

// FantasyTeam is one user's roster. At most one of AceDriverID and
// AceConstructorID is set.
type FantasyTeam struct {
	ID                 string
	UserID             string
	Name               string
	Drivers            []RosterDriver
	Constructor        RosterConstructor
	TotalPoints        int
	Budget             float64
	TotalSpent         float64
	AceDriverID        string
	AceConstructorID   string
	RacesSinceTransfer int
	IsLocked           bool
	LockStatus         LockStatus
	UpdatedAt          time.Time
}

// RosterValue is the sum of the team's cached current prices, constructor
// included.
func (t FantasyTeam) RosterValue() float64 {
	v := t.Constructor.CurrentPrice
	for _, d := range t.Drivers {
		v += d.CurrentPrice
	}
	return v
}

// PurchaseValue is the sum of the prices the roster was bought at.
func (t FantasyTeam) PurchaseValue() float64 {
	v := t.Constructor.PurchasePrice
	for _, d := range t.Drivers {
		v += d.PurchasePrice
	}
	return v
}
