package domain

import "time"

// PriceHistoryRecord is an append-only audit row written once per repriced
// entity per race. Rows are never mutated or deleted by the pipeline; the
// archiver may additionally copy them to cold storage.
type PriceHistoryRecord struct {
	ID                string     `json:"id"`
	EntityID          string     `json:"entityId"`
	EntityType        EntityType `json:"entityType"`
	Price             float64    `json:"price"`
	PreviousPrice     float64    `json:"previousPrice"`
	Change            float64    `json:"change"`
	PerformanceChange float64    `json:"performanceChange"`
	DNFPenalty        float64    `json:"dnfPenalty"`
	Points            int        `json:"points"`
	RaceID            string     `json:"raceId"`
	CreatedAt         time.Time  `json:"createdAt"`
}
