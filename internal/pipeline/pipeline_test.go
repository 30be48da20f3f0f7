package pipeline

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// world is an in-memory backing store implementing every interface the
// pipeline touches, with a batch writer that interprets mutations against
// the maps so durable re-reads between phases observe earlier commits.
type world struct {
	races        map[string]domain.Race
	teams        map[string]domain.FantasyTeam
	drivers      map[string]domain.MarketDriver
	constructors map[string]domain.MarketConstructor
	members      map[string]domain.LeagueMember
	history      []map[string]any
	applies      int
}

func memberKey(leagueID, userID string) string { return leagueID + "|" + userID }

func (w *world) GetRace(_ context.Context, id string) (domain.Race, error) {
	r, ok := w.races[id]
	if !ok {
		return domain.Race{}, domain.ErrNotFound
	}
	return r, nil
}

func (w *world) SetStatus(_ context.Context, id string, status domain.RaceStatus) error {
	r, ok := w.races[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	w.races[id] = r
	return nil
}

func (w *world) ListTeams(context.Context) ([]domain.FantasyTeam, error) {
	out := make([]domain.FantasyTeam, 0, len(w.teams))
	for _, t := range w.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *world) GetTeam(_ context.Context, id string) (domain.FantasyTeam, error) {
	t, ok := w.teams[id]
	if !ok {
		return domain.FantasyTeam{}, domain.ErrNotFound
	}
	return t, nil
}

func (w *world) ListLockedTeams(context.Context) ([]domain.FantasyTeam, error) {
	var out []domain.FantasyTeam
	for _, t := range w.teams {
		if t.IsLocked {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *world) GetDriver(_ context.Context, id string) (domain.MarketDriver, error) {
	d, ok := w.drivers[id]
	if !ok {
		return domain.MarketDriver{}, domain.ErrNotFound
	}
	return d, nil
}

func (w *world) GetConstructor(_ context.Context, id string) (domain.MarketConstructor, error) {
	c, ok := w.constructors[id]
	if !ok {
		return domain.MarketConstructor{}, domain.ErrNotFound
	}
	return c, nil
}

func (w *world) ListActiveDrivers(context.Context) ([]domain.MarketDriver, error) {
	var out []domain.MarketDriver
	for _, d := range w.drivers {
		if d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *world) ListActiveConstructors(context.Context) ([]domain.MarketConstructor, error) {
	var out []domain.MarketConstructor
	for _, c := range w.constructors {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (w *world) ListMembers(context.Context) ([]domain.LeagueMember, error) {
	out := make([]domain.LeagueMember, 0, len(w.members))
	for _, m := range w.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return memberKey(out[i].LeagueID, out[i].UserID) < memberKey(out[j].LeagueID, out[j].UserID)
	})
	return out, nil
}

func (w *world) ListMembersByLeague(_ context.Context, leagueID string) ([]domain.LeagueMember, error) {
	var out []domain.LeagueMember
	for _, m := range w.members {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (w *world) Apply(_ context.Context, muts []domain.Mutation) error {
	w.applies++
	for _, m := range muts {
		switch m.Table {
		case domain.TableTeams:
			t := w.teams[m.Key["id"].(string)]
			if v, ok := m.Set["drivers"]; ok {
				t.Drivers = v.([]domain.RosterDriver)
			}
			if v, ok := m.Set["constructor"]; ok {
				t.Constructor = v.(domain.RosterConstructor)
			}
			if v, ok := m.Set["budget"]; ok {
				t.Budget = v.(float64)
			}
			if v, ok := m.Set["is_locked"]; ok {
				t.IsLocked = v.(bool)
			}
			if v, ok := m.Set["lock_status"]; ok {
				t.LockStatus = v.(domain.LockStatus)
			}
			if v, ok := m.Inc["total_points"]; ok {
				t.TotalPoints += v.(int)
			}
			if v, ok := m.Inc["races_since_transfer"]; ok {
				t.RacesSinceTransfer += v.(int)
			}
			w.teams[m.Key["id"].(string)] = t
		case domain.TableDrivers:
			d := w.drivers[m.Key["id"].(string)]
			if v, ok := m.Set["price"]; ok {
				d.Price = v.(float64)
			}
			if v, ok := m.Set["previous_price"]; ok {
				d.PreviousPrice = v.(float64)
			}
			if v, ok := m.Set["tier"]; ok {
				d.Tier = domain.Tier(v.(string))
			}
			if v, ok := m.Inc["fantasy_points"]; ok {
				d.FantasyPoints += v.(int)
			}
			w.drivers[m.Key["id"].(string)] = d
		case domain.TableConstructors:
			c := w.constructors[m.Key["id"].(string)]
			if v, ok := m.Set["price"]; ok {
				c.Price = v.(float64)
			}
			if v, ok := m.Set["previous_price"]; ok {
				c.PreviousPrice = v.(float64)
			}
			if v, ok := m.Inc["fantasy_points"]; ok {
				c.FantasyPoints += v.(int)
			}
			w.constructors[m.Key["id"].(string)] = c
		case domain.TableLeagueMembers:
			key := memberKey(m.Key["league_id"].(string), m.Key["user_id"].(string))
			lm := w.members[key]
			if v, ok := m.Inc["total_points"]; ok {
				lm.TotalPoints += v.(int)
			}
			if v, ok := m.Set["rank"]; ok {
				lm.Rank = v.(int)
			}
			w.members[key] = lm
		case domain.TablePriceHistory:
			if !m.Insert {
				return fmt.Errorf("unexpected non-insert history mutation")
			}
			w.history = append(w.history, m.Set)
		default:
			return fmt.Errorf("unexpected table %q", m.Table)
		}
	}
	return nil
}

type fakeCache struct {
	prices map[string]float64
}

func (f *fakeCache) SetPrice(_ context.Context, typ domain.EntityType, id string, price float64, _ time.Time) error {
	f.prices[string(typ)+":"+id] = price
	return nil
}

func (f *fakeCache) GetPrice(_ context.Context, typ domain.EntityType, id string) (float64, bool, error) {
	p, ok := f.prices[string(typ)+":"+id]
	return p, ok, nil
}

func testWorld() *world {
	return &world{
		races: map[string]domain.Race{
			"r1": {
				ID:        "r1",
				Status:    domain.StatusCompleted,
				TotalLaps: 50,
				Results: domain.RaceResults{
					RaceResults: []domain.RaceResult{
						{DriverID: "d1", ConstructorID: "c1", Position: 1, GridPosition: 1, Status: domain.ResultFinished, Laps: 50},
						{DriverID: "d2", ConstructorID: "c1", Position: 2, GridPosition: 2, Status: domain.ResultFinished, Laps: 50},
					},
				},
			},
		},
		teams: map[string]domain.FantasyTeam{
			"t1": {
				ID:     "t1",
				UserID: "u1",
				Drivers: []domain.RosterDriver{
					{DriverID: "d1", PurchasePrice: 100, CurrentPrice: 100},
				},
				Constructor: domain.RosterConstructor{ConstructorID: "c1", PurchasePrice: 100, CurrentPrice: 100},
				TotalSpent:  200,
				IsLocked:    true,
				LockStatus:  domain.LockStatus{LockReason: "race weekend"},
			},
			"t2": {
				ID:     "t2",
				UserID: "u2",
				Drivers: []domain.RosterDriver{
					{DriverID: "d2", PurchasePrice: 100, CurrentPrice: 100},
				},
				Constructor: domain.RosterConstructor{ConstructorID: "c1", PurchasePrice: 100, CurrentPrice: 100},
				TotalSpent:  200,
				IsLocked:    true,
				LockStatus:  domain.LockStatus{IsSeasonLocked: true, LockReason: "season lock"},
			},
		},
		drivers: map[string]domain.MarketDriver{
			"d1": {ID: "d1", ConstructorID: "c1", Price: 100, Tier: domain.TierB, IsActive: true},
			"d2": {ID: "d2", ConstructorID: "c1", Price: 100, Tier: domain.TierB, IsActive: true},
		},
		constructors: map[string]domain.MarketConstructor{
			"c1": {ID: "c1", Price: 100, Tier: domain.TierB, IsActive: true},
		},
		members: map[string]domain.LeagueMember{
			memberKey("L1", "u1"): {LeagueID: "L1", UserID: "u1", TeamID: "t1"},
			memberKey("L1", "u2"): {LeagueID: "L1", UserID: "u2", TeamID: "t2"},
		},
	}
}

func newTestPipeline(w *world, opts ...Option) *Pipeline {
	return New(w, w, w, w, w, discardLogger(), opts...)
}

func TestPipelineRun(t *testing.T) {
	w := testWorld()
	cache := &fakeCache{prices: map[string]float64{}}

	p := newTestPipeline(w, WithWorkers(2), WithPriceCache(cache))
	if err := p.Run(context.Background(), "r1"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Phase 1: scoring. t1 holds the winner: 45 plus the constructor's
	// 45+40. t2 holds P2: 40 plus the same constructor.
	t1, t2 := w.teams["t1"], w.teams["t2"]
	if t1.TotalPoints != 130 {
		t.Errorf("t1.TotalPoints = %d, want 130", t1.TotalPoints)
	}
	if t2.TotalPoints != 125 {
		t.Errorf("t2.TotalPoints = %d, want 125", t2.TotalPoints)
	}
	if t1.RacesSinceTransfer != 1 || t2.RacesSinceTransfer != 1 {
		t.Error("races_since_transfer should be incremented once per team")
	}
	if t1.Drivers[0].PointsScored != 45 || t1.Drivers[0].RacesHeld != 1 {
		t.Errorf("t1 roster driver = %+v, want 45 points over 1 race", t1.Drivers[0])
	}
	if t1.Constructor.PointsScored != 85 {
		t.Errorf("t1.Constructor.PointsScored = %d, want 85", t1.Constructor.PointsScored)
	}

	// Phase 2: repricing. Winning on a $100 price is a great weekend in the
	// bottom band: +12 for every entity here.
	for id, want := range map[string]float64{"d1": 112, "d2": 112} {
		if got := w.drivers[id].Price; got != want {
			t.Errorf("driver %s price = %v, want %v", id, got, want)
		}
		if got := w.drivers[id].PreviousPrice; got != 100 {
			t.Errorf("driver %s previous price = %v, want 100", id, got)
		}
	}
	if got := w.constructors["c1"].Price; got != 112 {
		t.Errorf("constructor price = %v, want 112", got)
	}
	if w.drivers["d1"].FantasyPoints != 25 || w.drivers["d2"].FantasyPoints != 18 {
		t.Errorf("driver fantasy points = %d/%d, want 25/18",
			w.drivers["d1"].FantasyPoints, w.drivers["d2"].FantasyPoints)
	}
	if len(w.history) != 3 {
		t.Errorf("wrote %d history rows, want 3", len(w.history))
	}
	if got := cache.prices["driver:d1"]; got != 112 {
		t.Errorf("cached d1 price = %v, want 112", got)
	}

	// Phase 3: valuation re-reads committed prices into the rosters and
	// recomputes budgets: 1000 - 200 spent + 24 appreciation.
	if t1.Drivers[0].CurrentPrice != 112 || t1.Constructor.CurrentPrice != 112 {
		t.Errorf("t1 roster prices = %v/%v, want 112/112",
			t1.Drivers[0].CurrentPrice, t1.Constructor.CurrentPrice)
	}
	if t1.Budget != 824 {
		t.Errorf("t1.Budget = %v, want 824", t1.Budget)
	}

	// Phase 4: league standings and dense ranks.
	u1 := w.members[memberKey("L1", "u1")]
	u2 := w.members[memberKey("L1", "u2")]
	if u1.TotalPoints != 130 || u1.Rank != 1 {
		t.Errorf("u1 standing = %d pts rank %d, want 130 pts rank 1", u1.TotalPoints, u1.Rank)
	}
	if u2.TotalPoints != 125 || u2.Rank != 2 {
		t.Errorf("u2 standing = %d pts rank %d, want 125 pts rank 2", u2.TotalPoints, u2.Rank)
	}

	// Phase 5: weekend locks clear, season locks survive.
	if t1.IsLocked || !t1.LockStatus.CanModify {
		t.Errorf("t1 lock = %+v, want released", t1.LockStatus)
	}
	if !t2.IsLocked || !t2.LockStatus.IsSeasonLocked {
		t.Errorf("t2 lock = %+v, want season lock untouched", t2.LockStatus)
	}
}

func TestPipelineRunNoResults(t *testing.T) {
	w := testWorld()
	w.races["r1"] = domain.Race{ID: "r1", Status: domain.StatusCompleted, TotalLaps: 50}

	p := newTestPipeline(w)
	if err := p.Run(context.Background(), "r1"); err != nil {
		t.Fatalf("Run() error = %v, want nil no-op", err)
	}
	if w.applies != 0 {
		t.Errorf("batch writer applied %d times, want 0", w.applies)
	}
}

func TestPipelineRunMissingRace(t *testing.T) {
	p := newTestPipeline(testWorld())
	if err := p.Run(context.Background(), "nope"); err == nil {
		t.Fatal("Run() expected error for unknown race")
	}
}

func TestUpdateStandingsTieBreak(t *testing.T) {
	w := testWorld()
	w.members = map[string]domain.LeagueMember{
		memberKey("L1", "u_b"): {LeagueID: "L1", UserID: "u_b", TeamID: "t1", TotalPoints: 50, Rank: 1},
		memberKey("L1", "u_a"): {LeagueID: "L1", UserID: "u_a", TeamID: "t2", TotalPoints: 50, Rank: 2},
	}

	p := newTestPipeline(w)
	if err := p.updateStandings(context.Background(), map[string]int{"t1": 10, "t2": 10}); err != nil {
		t.Fatalf("updateStandings() error = %v", err)
	}

	// Equal points: the lower user ID wins the tie.
	if got := w.members[memberKey("L1", "u_a")]; got.Rank != 1 || got.TotalPoints != 60 {
		t.Errorf("u_a = rank %d / %d pts, want rank 1 / 60 pts", got.Rank, got.TotalPoints)
	}
	if got := w.members[memberKey("L1", "u_b")]; got.Rank != 2 || got.TotalPoints != 60 {
		t.Errorf("u_b = rank %d / %d pts, want rank 2 / 60 pts", got.Rank, got.TotalPoints)
	}
}

func TestUpdateStandingsSkipsZeroDeltas(t *testing.T) {
	w := testWorld()
	p := newTestPipeline(w)

	if err := p.updateStandings(context.Background(), map[string]int{"t1": 0}); err != nil {
		t.Fatalf("updateStandings() error = %v", err)
	}
	for key, m := range w.members {
		if m.TotalPoints != 0 || m.Rank != 0 {
			t.Errorf("member %s = %+v, want untouched", key, m)
		}
	}
}
