package pricing

import "github.com/Ringzero787/f1-fantasy-backend/internal/domain"

// Price bounds and model thresholds.
const (
	MinPrice = 5
	MaxPrice = 700

	// TierAThreshold splits the market into tiers A and B by price.
	TierAThreshold = 240
	// tierBThreshold splits bands B and C in the delta table.
	tierBThreshold = 120

	// diminishFloor is the price above which positive deltas start
	// shrinking; at MaxPrice they are scaled down to diminishMin of the
	// raw value.
	diminishFloor = 400
	diminishMin   = 0.25

	// DNF penalty range, weighted by how far into the race the retirement
	// happened: minDNFPenalty at the end of the race, maxDNFPenalty at
	// lap zero.
	minDNFPenalty = 2.0
	maxDNFPenalty = 24.0
)

// PerformanceTier classifies a weekend by points-per-price-unit (PPM).
type PerformanceTier int

const (
	TierGreat PerformanceTier = iota
	TierGood
	TierPoor
	TierTerrible
)

// ClassifyPerformance tiers an entity's weekend by PPM. A zero price yields
// zero PPM rather than a division blowup.
func ClassifyPerformance(points int, price float64) PerformanceTier {
	ppm := 0.0
	if price > 0 {
		ppm = float64(points) / price
	}
	switch {
	case ppm >= 0.06:
		return TierGreat
	case ppm >= 0.04:
		return TierGood
	case ppm >= 0.02:
		return TierPoor
	default:
		return TierTerrible
	}
}

// priceBands maps the current price band to raw deltas indexed by
// performance tier: great, good, poor, terrible.
func rawDelta(price float64, tier PerformanceTier) float64 {
	var band [4]float64
	switch {
	case price > TierAThreshold:
		band = [4]float64{36, 12, -12, -36}
	case price > tierBThreshold:
		band = [4]float64{24, 7, -7, -24}
	default:
		band = [4]float64{12, 5, -5, -12}
	}
	return band[tier]
}

// Diminish shrinks a positive delta as the price approaches the ceiling:
// linear from full value at diminishFloor to diminishMin of it at MaxPrice.
// Negative deltas and prices at or below the floor pass through untouched.
func Diminish(delta, price float64) float64 {
	if delta <= 0 || price <= diminishFloor {
		return delta
	}
	progress := (price - diminishFloor) / (MaxPrice - diminishFloor)
	if progress > 1 {
		progress = 1
	}
	return delta * (1 - progress*(1-diminishMin))
}

// DNFPenalty is the price deduction for a race-leg retirement, linear in
// how early it happened: lap zero costs the maximum, a retirement on the
// last lap the minimum. One-lap races always penalise at the minimum.
func DNFPenalty(r domain.RaceResult, totalLaps int) float64 {
	if r.Status == domain.ResultFinished {
		return 0
	}
	if totalLaps <= 1 {
		return minDNFPenalty
	}
	completed := float64(r.Laps) / float64(totalLaps-1)
	if completed > 1 {
		completed = 1
	}
	return maxDNFPenalty - (maxDNFPenalty-minDNFPenalty)*completed
}

// Reprice is the full pricing decision for one entity.
type Reprice struct {
	Points     int
	PerfDelta  float64
	DNFPenalty float64
	NewPrice   float64
}

// compute applies the shared model: tier by PPM, band delta by price,
// diminishing returns, DNF deduction, and the hard clamp.
func compute(points int, price, dnfPenalty float64) Reprice {
	tier := ClassifyPerformance(points, price)
	delta := Diminish(rawDelta(price, tier), price)

	newPrice := price + delta - dnfPenalty
	if newPrice < MinPrice {
		newPrice = MinPrice
	}
	if newPrice > MaxPrice {
		newPrice = MaxPrice
	}

	return Reprice{
		Points:     points,
		PerfDelta:  delta,
		DNFPenalty: dnfPenalty,
		NewPrice:   newPrice,
	}
}

// RepriceDriver prices one active market driver against the classification.
func RepriceDriver(d domain.MarketDriver, cls domain.Classification) Reprice {
	points := DriverPoints(cls, d.ID)
	penalty := 0.0
	if r, ok := cls.DriverResult(d.ID); ok {
		penalty = DNFPenalty(r, cls.TotalLaps)
	}
	return compute(points, d.Price, penalty)
}

// RepriceConstructor prices one active market constructor. Its DNF penalty
// is the sum of its drivers' penalties.
func RepriceConstructor(c domain.MarketConstructor, cls domain.Classification) Reprice {
	points := ConstructorPoints(cls, c.ID)
	penalty := 0.0
	for _, r := range cls.ConstructorResults(c.ID) {
		penalty += DNFPenalty(r, cls.TotalLaps)
	}
	return compute(points, c.Price, penalty)
}

// ClassifyTier reassigns the market tier from the post-race price.
func ClassifyTier(price float64) domain.Tier {
	if price >= TierAThreshold {
		return domain.TierA
	}
	return domain.TierB
}
