package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied in order by Migrate. Every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS fare_configs (
		name         TEXT PRIMARY KEY,
		description  TEXT NOT NULL DEFAULT '',
		model        TEXT NOT NULL CHECK (model IN ('flat', 'tiered')),
		base_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_per_km DOUBLE PRECISION NOT NULL DEFAULT 0,
		min_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
		tiers        JSONB NOT NULL DEFAULT '[]',
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS provinces (
		code       TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		type       TEXT NOT NULL DEFAULT '',
		center_lat DOUBLE PRECISION,
		center_lon DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS districts (
		code          TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		type          TEXT NOT NULL DEFAULT '',
		province_code TEXT NOT NULL REFERENCES provinces (code),
		center_lat    DOUBLE PRECISION,
		center_lon    DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS districts_province_idx ON districts (province_code)`,
	`CREATE TABLE IF NOT EXISTS wards (
		code          TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		type          TEXT NOT NULL DEFAULT '',
		district_code TEXT NOT NULL REFERENCES districts (code),
		center_lat    DOUBLE PRECISION,
		center_lon    DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS wards_district_idx ON wards (district_code)`,

	`CREATE TABLE IF NOT EXISTS fixed_routes (
		id                        TEXT PRIMARY KEY,
		name                      TEXT NOT NULL,
		origin_province_code      TEXT,
		origin_district_code      TEXT,
		origin_ward_code          TEXT,
		destination_province_code TEXT,
		destination_district_code TEXT,
		destination_ward_code     TEXT,
		origin_text               TEXT NOT NULL DEFAULT '',
		destination_text          TEXT NOT NULL DEFAULT '',
		price                     DOUBLE PRECISION NOT NULL,
		active                    BOOLEAN NOT NULL DEFAULT TRUE,
		description               TEXT NOT NULL DEFAULT '',
		created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS fixed_routes_active_idx ON fixed_routes (active)`,

	`CREATE TABLE IF NOT EXISTS app_settings (
		key        TEXT PRIMARY KEY,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id               TEXT PRIMARY KEY,
		customer_name    TEXT NOT NULL,
		customer_phone   TEXT NOT NULL,
		customer_email   TEXT NOT NULL DEFAULT '',
		from_address     TEXT NOT NULL DEFAULT '',
		to_address       TEXT NOT NULL DEFAULT '',
		from_lat         DOUBLE PRECISION,
		from_lng         DOUBLE PRECISION,
		to_lat           DOUBLE PRECISION,
		to_lng           DOUBLE PRECISION,
		from_province    TEXT,
		from_district    TEXT,
		from_ward        TEXT,
		to_province      TEXT,
		to_district      TEXT,
		to_ward          TEXT,
		travel_date      TEXT NOT NULL,
		travel_time      TEXT NOT NULL,
		passenger_count  INTEGER NOT NULL CHECK (passenger_count > 0),
		vehicle_type     TEXT NOT NULL,
		notes            TEXT NOT NULL DEFAULT '',
		fare_config      TEXT NOT NULL,
		distance_km      DOUBLE PRECISION NOT NULL,
		duration_minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
		price            DOUBLE PRECISION NOT NULL,
		method           TEXT NOT NULL,
		fixed_route_id   TEXT,
		status           TEXT NOT NULL DEFAULT 'pending',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_status_created_idx ON bookings (status, created_at DESC)`,
}

// Migrate applies Schema inside a single transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range Schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
