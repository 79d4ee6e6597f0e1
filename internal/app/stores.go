package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/database"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/settings"
)

// Stores holds one repository per persisted entity.
type Stores struct {
	Units       address.Repository
	FareConfigs fare.Repository
	FixedRoutes fixedroute.Repository
	Settings    settings.Repository
	Bookings    booking.Repository

	// Pool is nil when running on in-memory repositories.
	Pool *pgxpool.Pool
}

// Close closes the database pool, if any.
func (s *Stores) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// OpenStores connects to Postgres when a database is configured and falls
// back to in-memory repositories otherwise. An empty fare configuration
// table is seeded with the default configurations.
func OpenStores(ctx context.Context, cfg database.Config, logger zerolog.Logger) (*Stores, error) {
	if !cfg.Enabled() {
		logger.Warn().Msg("no database configured, using in-memory stores with seed data")
		return MemoryStores(), nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Bool("migrated", cfg.Migrate).
		Msg("database connected")

	stores := &Stores{
		Units:       address.NewPostgresRepository(pool),
		FareConfigs: fare.NewPostgresRepository(pool),
		FixedRoutes: fixedroute.NewPostgresRepository(pool),
		Settings:    settings.NewPostgresRepository(pool),
		Bookings:    booking.NewPostgresRepository(pool),
		Pool:        pool,
	}
	if err := seedFareConfigs(ctx, stores.FareConfigs, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return stores, nil
}

// MemoryStores returns in-memory repositories loaded with seed units and the
// default fare configurations.
func MemoryStores() *Stores {
	units := address.NewMemoryRepository()
	address.Seed(units)
	return &Stores{
		Units:       units,
		FareConfigs: fare.NewMemoryRepository(fare.Defaults()...),
		FixedRoutes: fixedroute.NewMemoryRepository(),
		Settings:    settings.NewMemoryRepository(),
		Bookings:    booking.NewMemoryRepository(),
	}
}

func seedFareConfigs(ctx context.Context, repo fare.Repository, logger zerolog.Logger) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list fare configs: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range fare.Defaults() {
		if err := repo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("seed fare config %s: %w", c.Name, err)
		}
	}
	logger.Info().Int("count", len(fare.Defaults())).Msg("seeded fare configurations")
	return nil
}
