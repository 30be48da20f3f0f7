package domain

import "time"

// Tier is the market-price classification of an entity. Tier A entities sit
// above the A-tier price threshold; ace picks must be priced at or below it.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
)

// EntityType distinguishes drivers from constructors in shared records such
// as price history rows.
type EntityType string

const (
	EntityDriver      EntityType = "driver"
	EntityConstructor EntityType = "constructor"
)

// MarketDriver is the canonical pricing record for a driver. Price is the
// single source of truth; every roster's cached copy is refreshed from it.
type MarketDriver struct {
	ID            string
	Name          string
	ConstructorID string
	Price         float64
	PreviousPrice float64
	FantasyPoints int
	Tier          Tier
	IsActive      bool
	UpdatedAt     time.Time
}

// MarketConstructor is the canonical pricing record for a constructor.
type MarketConstructor struct {
	ID            string
	Name          string
	Price         float64
	PreviousPrice float64
	FantasyPoints int
	Tier          Tier
	IsActive      bool
	UpdatedAt     time.Time
}
