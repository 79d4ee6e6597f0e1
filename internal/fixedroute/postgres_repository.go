package fixedroute

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripfare/tripfare/internal/address"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Unset administrative codes are stored as NULL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL fixed route repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const selectRoutes = `
	SELECT id, name,
		COALESCE(origin_province_code, ''), COALESCE(origin_district_code, ''), COALESCE(origin_ward_code, ''),
		COALESCE(destination_province_code, ''), COALESCE(destination_district_code, ''), COALESCE(destination_ward_code, ''),
		origin_text, destination_text, price, active, description, created_at, updated_at
	FROM fixed_routes
`

func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]*Route, error) {
	query := selectRoutes
	if activeOnly {
		query += " WHERE active"
	}
	return r.query(ctx, query+" ORDER BY created_at DESC, id")
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Route, error) {
	route, err := scanRoute(r.pool.QueryRow(ctx, selectRoutes+" WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}
	return route, nil
}

func (r *PostgresRepository) Create(ctx context.Context, route *Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if route.ID == "" {
		route.ID = NewID()
	}
	route.Active = true
	route.CreatedAt = now
	route.UpdatedAt = now

	query := `
		INSERT INTO fixed_routes (
			id, name,
			origin_province_code, origin_district_code, origin_ward_code,
			destination_province_code, destination_district_code, destination_ward_code,
			origin_text, destination_text, price, active, description, created_at, updated_at
		) VALUES (
			$1, $2,
			NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''),
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
			$9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := r.pool.Exec(ctx, query,
		route.ID, route.Name,
		route.Origin.ProvinceCode, route.Origin.DistrictCode, route.Origin.WardCode,
		route.Destination.ProvinceCode, route.Destination.DistrictCode, route.Destination.WardCode,
		route.OriginText, route.DestinationText, route.Price, route.Active, route.Description,
		route.CreatedAt, route.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, route *Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	route.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE fixed_routes SET
			name = $2,
			origin_province_code = NULLIF($3, ''), origin_district_code = NULLIF($4, ''), origin_ward_code = NULLIF($5, ''),
			destination_province_code = NULLIF($6, ''), destination_district_code = NULLIF($7, ''), destination_ward_code = NULLIF($8, ''),
			origin_text = $9, destination_text = $10, price = $11, active = $12, description = $13, updated_at = $14
		WHERE id = $1
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		route.ID, route.Name,
		route.Origin.ProvinceCode, route.Origin.DistrictCode, route.Origin.WardCode,
		route.Destination.ProvinceCode, route.Destination.DistrictCode, route.Destination.WardCode,
		route.OriginText, route.DestinationText, route.Price, route.Active, route.Description,
		route.UpdatedAt,
	).Scan(&route.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRouteNotFound
	}
	return err
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE fixed_routes SET active = FALSE, updated_at = $2 WHERE id = $1",
		id, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}

func (r *PostgresRepository) Search(ctx context.Context, text string) ([]*Route, error) {
	query := selectRoutes + `
		WHERE active AND (
			$1 = '' OR
			name ILIKE '%' || $1 || '%' OR
			origin_text ILIKE '%' || $1 || '%' OR
			destination_text ILIKE '%' || $1 || '%' OR
			description ILIKE '%' || $1 || '%'
		)
		ORDER BY created_at DESC, id
	`
	return r.query(ctx, query, text)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*Route, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return routes, nil
}

func scanRoute(row pgx.Row) (*Route, error) {
	var (
		route       Route
		origin      address.UnitRef
		destination address.UnitRef
	)

	err := row.Scan(
		&route.ID,
		&route.Name,
		&origin.ProvinceCode,
		&origin.DistrictCode,
		&origin.WardCode,
		&destination.ProvinceCode,
		&destination.DistrictCode,
		&destination.WardCode,
		&route.OriginText,
		&route.DestinationText,
		&route.Price,
		&route.Active,
		&route.Description,
		&route.CreatedAt,
		&route.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	route.Origin = origin
	route.Destination = destination
	return &route, nil
}
