package fare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Flat settings live in columns; tiers are a JSONB array.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL fare config repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectConfigs = `
	SELECT name, description, model, base_price, price_per_km, min_price, max_price, tiers, updated_at
	FROM fare_configs
`

func (r *PostgresRepository) Get(ctx context.Context, name string) (*NamedConfig, error) {
	cfg, err := scanConfig(r.pool.QueryRow(ctx, selectConfigs+" WHERE name = $1", name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*NamedConfig, error) {
	rows, err := r.pool.Query(ctx, selectConfigs+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*NamedConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, cfg *NamedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO fare_configs (name, description, model, base_price, price_per_km, min_price, max_price, tiers, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			model = EXCLUDED.model,
			base_price = EXCLUDED.base_price,
			price_per_km = EXCLUDED.price_per_km,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			tiers = EXCLUDED.tiers,
			updated_at = EXCLUDED.updated_at
	`

	var (
		base                      float64
		perKm, minPrice, maxPrice *float64
		tiersJSON                 []byte
	)
	switch cfg.Model {
	case ModelFlat:
		base = cfg.Flat.BasePrice
		perKm, minPrice, maxPrice = &cfg.Flat.PricePerKm, &cfg.Flat.MinPrice, &cfg.Flat.MaxPrice
	case ModelTiered:
		base = cfg.Tiered.BasePrice
		var err error
		if tiersJSON, err = json.Marshal(cfg.Tiered.Tiers); err != nil {
			return fmt.Errorf("encode tiers: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, query,
		cfg.Name, cfg.Description, string(cfg.Model),
		base, perKm, minPrice, maxPrice, tiersJSON, time.Now().UTC(),
	)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM fare_configs WHERE name = $1", name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConfigNotFound
	}
	return nil
}

func scanConfig(row pgx.Row) (*NamedConfig, error) {
	var (
		cfg                       NamedConfig
		model                     string
		base                      float64
		perKm, minPrice, maxPrice *float64
		tiersJSON                 []byte
	)

	err := row.Scan(
		&cfg.Name,
		&cfg.Description,
		&model,
		&base,
		&perKm,
		&minPrice,
		&maxPrice,
		&tiersJSON,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.Model = Model(model)
	switch cfg.Model {
	case ModelFlat:
		cfg.Flat = &FlatConfig{
			BasePrice:  base,
			PricePerKm: deref(perKm),
			MinPrice:   deref(minPrice),
			MaxPrice:   deref(maxPrice),
		}
	case ModelTiered:
		cfg.Tiered = &TieredConfig{BasePrice: base}
		if err := json.Unmarshal(tiersJSON, &cfg.Tiered.Tiers); err != nil {
			return nil, fmt.Errorf("decode tiers of %q: %w", cfg.Name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fare config %q: %w", cfg.Name, err)
	}

	return &cfg, nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
