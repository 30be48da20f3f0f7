package domain

import (
	"context"
	"io"
	"time"
)

// Mutation is a single partial update against one document. Key identifies
// the row, Set overwrites fields, Inc adds to numeric fields. Insert
// mutations append a new row built from Set alone (price history).
//
// Mutations are the unit the batch coordinator chunks and commits; field
// names are column names, matching the persisted wire contract.
type Mutation struct {
	Table  string
	Key    map[string]any
	Set    map[string]any
	Inc    map[string]any
	Insert bool
}

// Chunk splits mutations into groups of at most limit entries, preserving
// order. Each returned group is intended to be committed as one atomic unit.
func Chunk(muts []Mutation, limit int) [][]Mutation {
	if limit <= 0 || len(muts) == 0 {
		return nil
	}
	chunks := make([][]Mutation, 0, (len(muts)+limit-1)/limit)
	for len(muts) > limit {
		chunks = append(chunks, muts[:limit])
		muts = muts[limit:]
	}
	return append(chunks, muts)
}

// BatchWriter commits an arbitrary list of mutations, splitting it into
// chunks below the store's per-transaction operation ceiling and committing
// each chunk atomically, in order, awaiting each commit before the next.
type BatchWriter interface {
	Apply(ctx context.Context, muts []Mutation) error
}

// RaceStore persists races.
type RaceStore interface {
	GetRace(ctx context.Context, id string) (Race, error)
	SetStatus(ctx context.Context, id string, status RaceStatus) error
}

// TeamStore persists fantasy teams.
type TeamStore interface {
	ListTeams(ctx context.Context) ([]FantasyTeam, error)
	GetTeam(ctx context.Context, id string) (FantasyTeam, error)
	ListLockedTeams(ctx context.Context) ([]FantasyTeam, error)
}

// MarketStore persists canonical driver and constructor pricing entities.
type MarketStore interface {
	GetDriver(ctx context.Context, id string) (MarketDriver, error)
	GetConstructor(ctx context.Context, id string) (MarketConstructor, error)
	ListActiveDrivers(ctx context.Context) ([]MarketDriver, error)
	ListActiveConstructors(ctx context.Context) ([]MarketConstructor, error)
}

// LeagueStore persists league memberships and standings.
type LeagueStore interface {
	ListMembers(ctx context.Context) ([]LeagueMember, error)
	ListMembersByLeague(ctx context.Context, leagueID string) ([]LeagueMember, error)
}

// HistoryStore reads back price history rows; writes go through the batch
// coordinator as Insert mutations.
type HistoryStore interface {
	ListByRace(ctx context.Context, raceID string) ([]PriceHistoryRecord, error)
	ListByEntity(ctx context.Context, entityType EntityType, entityID string, limit int) ([]PriceHistoryRecord, error)
}

// PriceCache is a read-side cache of canonical market prices.
type PriceCache interface {
	SetPrice(ctx context.Context, entityType EntityType, entityID string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, entityType EntityType, entityID string) (float64, bool, error)
}

// SignalBus carries race status-change events between the store writers and
// the pipeline watcher.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// LockManager hands out distributed mutexes. The pipeline watcher takes one
// per run so replicas never process the same completion concurrently.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// BlobWriter uploads an object to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
