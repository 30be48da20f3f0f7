package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// MarketStore implements domain.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *pgxpool.Pool
}

// NewMarketStore creates a MarketStore backed by the given connection pool.
func NewMarketStore(pool *pgxpool.Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

const driverCols = `id, name, constructor_id, price, previous_price,
	fantasy_points, tier, is_active, updated_at`

func scanDriver(row pgx.Row) (domain.MarketDriver, error) {
	var (
		d    domain.MarketDriver
		tier string
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.ConstructorID, &d.Price, &d.PreviousPrice,
		&d.FantasyPoints, &tier, &d.IsActive, &d.UpdatedAt,
	)
	if err != nil {
		return domain.MarketDriver{}, err
	}
	d.Tier = domain.Tier(tier)
	return d, nil
}

// GetDriver retrieves a market driver by ID.
func (s *MarketStore) GetDriver(ctx context.Context, id string) (domain.MarketDriver, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+driverCols+` FROM market_drivers WHERE id = $1`, id)
	d, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MarketDriver{}, fmt.Errorf("postgres: driver %s: %w", id, domain.ErrNotFound)
		}
		return domain.MarketDriver{}, fmt.Errorf("postgres: get driver %s: %w", id, err)
	}
	return d, nil
}

// ListActiveDrivers returns every active driver ordered by ID.
func (s *MarketStore) ListActiveDrivers(ctx context.Context) ([]domain.MarketDriver, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+driverCols+` FROM market_drivers WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active drivers: %w", err)
	}
	defer rows.Close()

	var drivers []domain.MarketDriver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list active drivers rows: %w", err)
	}
	return drivers, nil
}

const constructorCols = `id, name, price, previous_price,
	fantasy_points, tier, is_active, updated_at`

func scanConstructor(row pgx.Row) (domain.MarketConstructor, error) {
	var (
		c    domain.MarketConstructor
		tier string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Price, &c.PreviousPrice,
		&c.FantasyPoints, &tier, &c.IsActive, &c.UpdatedAt,
	)
	if err != nil {
		return domain.MarketConstructor{}, err
	}
	c.Tier = domain.Tier(tier)
	return c, nil
}

// GetConstructor retrieves a market constructor by ID.
func (s *MarketStore) GetConstructor(ctx context.Context, id string) (domain.MarketConstructor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+constructorCols+` FROM market_constructors WHERE id = $1`, id)
	c, err := scanConstructor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MarketConstructor{}, fmt.Errorf("postgres: constructor %s: %w", id, domain.ErrNotFound)
		}
		return domain.MarketConstructor{}, fmt.Errorf("postgres: get constructor %s: %w", id, err)
	}
	return c, nil
}

// ListActiveConstructors returns every active constructor ordered by ID.
func (s *MarketStore) ListActiveConstructors(ctx context.Context) ([]domain.MarketConstructor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+constructorCols+` FROM market_constructors WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active constructors: %w", err)
	}
	defer rows.Close()

	var constructors []domain.MarketConstructor
	for rows.Next() {
		c, err := scanConstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan constructor: %w", err)
		}
		constructors = append(constructors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list active constructors rows: %w", err)
	}
	return constructors, nil
}
