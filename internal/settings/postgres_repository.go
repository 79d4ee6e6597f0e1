package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores settings in the app_settings table with JSONB values.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL settings repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a single setting by key.
func (r *PostgresRepository) Get(ctx context.Context, key string) (*Setting, error) {
	query := `
		SELECT key, value, updated_at
		FROM app_settings
		WHERE key = $1
	`

	s, err := scanSetting(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return s, nil
}

// All retrieves every stored setting.
func (r *PostgresRepository) All(ctx context.Context) (map[string]*Setting, error) {
	query := `
		SELECT key, value, updated_at
		FROM app_settings
		ORDER BY key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*Setting)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out[s.Key] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Set upserts the given settings in one transaction.
func (r *PostgresRepository) Set(ctx context.Context, settings ...*Setting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	for _, s := range settings {
		raw, err := json.Marshal(s.Value)
		if err != nil {
			return fmt.Errorf("encode setting %s: %w", s.Key, err)
		}
		if _, err := tx.Exec(ctx, query, s.Key, raw, now); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes a setting.
func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM app_settings WHERE key = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSettingNotFound
	}
	return nil
}

func scanSetting(row pgx.Row) (*Setting, error) {
	var (
		s   Setting
		raw []byte
	)
	if err := row.Scan(&s.Key, &raw, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.Value); err != nil {
		return nil, fmt.Errorf("decode setting %s: %w", s.Key, err)
	}
	return &s, nil
}

var _ Repository = (*PostgresRepository)(nil)
