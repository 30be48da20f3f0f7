package scoring

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

type fakeMarkets struct {
	drivers      map[string]domain.MarketDriver
	constructors map[string]domain.MarketConstructor
	err          error
}

func (f *fakeMarkets) GetDriver(_ context.Context, id string) (domain.MarketDriver, error) {
	if f.err != nil {
		return domain.MarketDriver{}, f.err
	}
	d, ok := f.drivers[id]
	if !ok {
		return domain.MarketDriver{}, domain.ErrNotFound
	}
	return d, nil
}

func (f *fakeMarkets) GetConstructor(_ context.Context, id string) (domain.MarketConstructor, error) {
	if f.err != nil {
		return domain.MarketConstructor{}, f.err
	}
	c, ok := f.constructors[id]
	if !ok {
		return domain.MarketConstructor{}, domain.ErrNotFound
	}
	return c, nil
}

func testEngine(markets *fakeMarkets) *Engine {
	return NewEngine(markets, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// One driver winning from P5 with the fastest lap, held for two races, with
// the ace multiplier on a price-eligible driver: race leg 45+4+1=50, lock
// bonus 2, doubled to 104.
func aceTeam() domain.FantasyTeam {
	return domain.FantasyTeam{
		ID:     "t1",
		UserID: "u1",
		Drivers: []domain.RosterDriver{
			{DriverID: "d1", Name: "Driver One", PointsScored: 80, RacesHeld: 2},
		},
		Constructor: domain.RosterConstructor{ConstructorID: "c-other"},
		AceDriverID: "d1",
	}
}

func aceClassification() domain.Classification {
	return domain.Classification{
		RaceID:    "r1",
		TotalLaps: 57,
		Race: map[string]domain.RaceResult{
			"d1": {DriverID: "d1", Position: 1, GridPosition: 5, Status: domain.ResultFinished, FastestLap: true},
		},
		ByConstructor: map[string][]domain.RaceResult{},
	}
}

func TestScoreTeamAceDoubled(t *testing.T) {
	markets := &fakeMarkets{drivers: map[string]domain.MarketDriver{
		"d1": {ID: "d1", Price: 200},
	}}

	got, err := testEngine(markets).ScoreTeam(context.Background(), aceTeam(), aceClassification())
	if err != nil {
		t.Fatalf("ScoreTeam() error = %v", err)
	}
	if got.Delta != 104 {
		t.Errorf("Delta = %d, want 104", got.Delta)
	}
	if got.Drivers[0].PointsScored != 80+104 {
		t.Errorf("PointsScored = %d, want %d", got.Drivers[0].PointsScored, 80+104)
	}
	if got.Drivers[0].RacesHeld != 3 {
		t.Errorf("RacesHeld = %d, want 3", got.Drivers[0].RacesHeld)
	}
}

func TestScoreTeamAceOverPriced(t *testing.T) {
	markets := &fakeMarkets{drivers: map[string]domain.MarketDriver{
		"d1": {ID: "d1", Price: AceMaxPrice + 1},
	}}

	got, err := testEngine(markets).ScoreTeam(context.Background(), aceTeam(), aceClassification())
	if err != nil {
		t.Fatalf("ScoreTeam() error = %v", err)
	}
	if got.Delta != 52 {
		t.Errorf("Delta = %d, want 52 (multiplier dropped)", got.Delta)
	}
}

func TestScoreTeamAceMissingFromMarket(t *testing.T) {
	markets := &fakeMarkets{drivers: map[string]domain.MarketDriver{}}

	got, err := testEngine(markets).ScoreTeam(context.Background(), aceTeam(), aceClassification())
	if err != nil {
		t.Fatalf("ScoreTeam() error = %v", err)
	}
	if got.Delta != 52 {
		t.Errorf("Delta = %d, want 52 (multiplier dropped)", got.Delta)
	}
}

func TestScoreTeamAceLookupFailure(t *testing.T) {
	markets := &fakeMarkets{err: errors.New("connection refused")}

	_, err := testEngine(markets).ScoreTeam(context.Background(), aceTeam(), aceClassification())
	if err == nil {
		t.Fatal("ScoreTeam() expected error on non-NotFound lookup failure")
	}
}

func TestScoreTeamConstructorAndStalePenalty(t *testing.T) {
	team := domain.FantasyTeam{
		ID: "t2",
		Drivers: []domain.RosterDriver{
			{DriverID: "d1"},
			{DriverID: "d2"},
		},
		Constructor:        domain.RosterConstructor{ConstructorID: "c1", RacesHeld: 6},
		RacesSinceTransfer: 7,
	}
	cls := domain.Classification{
		RaceID: "r1",
		Race: map[string]domain.RaceResult{
			"d1": {DriverID: "d1", Position: 1, GridPosition: 1, Status: domain.ResultFinished},
			"d2": {DriverID: "d2", Position: 4, GridPosition: 4, Status: domain.ResultFinished},
		},
		ByConstructor: map[string][]domain.RaceResult{
			"c1": {
				{DriverID: "d1", Position: 1, Status: domain.ResultFinished},
				{DriverID: "d2", Position: 4, Status: domain.ResultFinished},
			},
		},
	}

	got, err := testEngine(&fakeMarkets{}).ScoreTeam(context.Background(), team, cls)
	if err != nil {
		t.Fatalf("ScoreTeam() error = %v", err)
	}
	// Drivers 45 + 32, constructor 45 + 32 + lock bonus 9, minus stale 10.
	want := 45 + 32 + 45 + 32 + 9 - 10
	if got.Delta != want {
		t.Errorf("Delta = %d, want %d", got.Delta, want)
	}
	if got.Constructor.RacesHeld != 7 {
		t.Errorf("Constructor.RacesHeld = %d, want 7", got.Constructor.RacesHeld)
	}
	if got.Constructor.PointsScored != 45+32+9 {
		t.Errorf("Constructor.PointsScored = %d, want %d", got.Constructor.PointsScored, 45+32+9)
	}
}

func TestScoreTeamUnclassifiedDriverGetsLockBonusOnly(t *testing.T) {
	team := domain.FantasyTeam{
		ID: "t3",
		Drivers: []domain.RosterDriver{
			{DriverID: "d9", RacesHeld: 4},
		},
		Constructor: domain.RosterConstructor{ConstructorID: "c-none"},
	}
	cls := domain.Classification{RaceID: "r1", Race: map[string]domain.RaceResult{}}

	got, err := testEngine(&fakeMarkets{}).ScoreTeam(context.Background(), team, cls)
	if err != nil {
		t.Fatalf("ScoreTeam() error = %v", err)
	}
	if got.Delta != 5 { // LockBonus(4)
		t.Errorf("Delta = %d, want 5", got.Delta)
	}
}
