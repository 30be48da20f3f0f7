package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/Ringzero787/f1-fantasy-backend/internal/blob/s3"
	"github.com/Ringzero787/f1-fantasy-backend/internal/cache/redis"
	"github.com/Ringzero787/f1-fantasy-backend/internal/config"
	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
	"github.com/Ringzero787/f1-fantasy-backend/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	// Stores
	RaceStore    domain.RaceStore
	TeamStore    domain.TeamStore
	MarketStore  domain.MarketStore
	LeagueStore  domain.LeagueStore
	HistoryStore domain.HistoryStore
	BatchWriter  domain.BatchWriter

	// Caches
	PriceCache  domain.PriceCache
	SignalBus   domain.SignalBus
	LockManager domain.LockManager

	// Blob storage (nil unless S3 is enabled)
	BlobWriter domain.BlobWriter
	Archiver   *s3blob.Archiver
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// PostgreSQL
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.RaceStore = postgres.NewRaceStore(pool)
	deps.TeamStore = postgres.NewTeamStore(pool)
	deps.MarketStore = postgres.NewMarketStore(pool)
	deps.LeagueStore = postgres.NewLeagueStore(pool)
	deps.HistoryStore = postgres.NewHistoryStore(pool)
	deps.BatchWriter = postgres.NewBatchWriter(pool)

	// Redis
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.PriceCache = redis.NewPriceCache(redisClient, cfg.Pipeline.PriceCacheTTL.Duration)
	deps.SignalBus = redis.NewSignalBus(redisClient)
	if cfg.Pipeline.RunLock {
		deps.LockManager = redis.NewLockManager(redisClient)
	}

	// S3 blob storage
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, deps.HistoryStore)
	}

	logger.InfoContext(ctx, "dependencies wired",
		slog.Bool("s3_enabled", cfg.S3.Enabled),
		slog.Bool("run_lock", cfg.Pipeline.RunLock),
	)

	return deps, cleanup, nil
}
