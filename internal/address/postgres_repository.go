package address

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripfare/tripfare/internal/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Centers are stored as nullable center_lat/center_lon columns.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL address repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListProvinces returns all provinces ordered by name.
func (r *PostgresRepository) ListProvinces(ctx context.Context) ([]*Province, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, type, center_lat, center_lon
		FROM provinces
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Province
	for rows.Next() {
		var p Province
		var lat, lon *float64
		if err := rows.Scan(&p.Code, &p.Name, &p.Type, &lat, &lon); err != nil {
			return nil, err
		}
		p.Center = toPoint(lat, lon)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// ListDistricts returns the districts of a province ordered by name.
func (r *PostgresRepository) ListDistricts(ctx context.Context, provinceCode string) ([]*District, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, type, province_code, center_lat, center_lon
		FROM districts
		WHERE province_code = $1
		ORDER BY name
	`, provinceCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*District
	for rows.Next() {
		var d District
		var lat, lon *float64
		if err := rows.Scan(&d.Code, &d.Name, &d.Type, &d.ProvinceCode, &lat, &lon); err != nil {
			return nil, err
		}
		d.Center = toPoint(lat, lon)
		out = append(out, &d)
	}
	return out, rows.Err()
}

// ListWards returns the wards of a district ordered by name.
func (r *PostgresRepository) ListWards(ctx context.Context, districtCode string) ([]*Ward, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, name, type, district_code, center_lat, center_lon
		FROM wards
		WHERE district_code = $1
		ORDER BY name
	`, districtCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Ward
	for rows.Next() {
		var w Ward
		var lat, lon *float64
		if err := rows.Scan(&w.Code, &w.Name, &w.Type, &w.DistrictCode, &lat, &lon); err != nil {
			return nil, err
		}
		w.Center = toPoint(lat, lon)
		out = append(out, &w)
	}
	return out, rows.Err()
}

// Resolve looks up every populated level of ref in one query.
func (r *PostgresRepository) Resolve(ctx context.Context, ref UnitRef) (*Resolved, error) {
	query := `
		SELECT
			p.code, p.name, p.type, p.center_lat, p.center_lon,
			d.code, d.name, d.type, d.center_lat, d.center_lon,
			w.code, w.name, w.type, w.center_lat, w.center_lon
		FROM provinces p
		LEFT JOIN districts d ON d.code = $2 AND d.province_code = p.code
		LEFT JOIN wards w ON w.code = $3 AND w.district_code = d.code
		WHERE p.code = $1
	`

	var (
		p                   Province
		pLat, pLon          *float64
		dCode, dName, dType *string
		dLat, dLon          *float64
		wCode, wName, wType *string
		wLat, wLon          *float64
	)
	err := r.pool.QueryRow(ctx, query, ref.ProvinceCode, ref.DistrictCode, ref.WardCode).Scan(
		&p.Code, &p.Name, &p.Type, &pLat, &pLon,
		&dCode, &dName, &dType, &dLat, &dLon,
		&wCode, &wName, &wType, &wLat, &wLon,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	p.Center = toPoint(pLat, pLon)
	res := &Resolved{Ref: ref, Province: &p}

	if ref.DistrictCode != "" {
		if dCode == nil {
			return nil, ErrUnitNotFound
		}
		res.District = &District{
			Code:         *dCode,
			Name:         deref(dName),
			Type:         deref(dType),
			ProvinceCode: p.Code,
			Center:       toPoint(dLat, dLon),
		}
	}
	if ref.WardCode != "" {
		if wCode == nil {
			return nil, ErrUnitNotFound
		}
		res.Ward = &Ward{
			Code:         *wCode,
			Name:         deref(wName),
			Type:         deref(wType),
			DistrictCode: ref.DistrictCode,
			Center:       toPoint(wLat, wLon),
		}
	}

	mostSpecificCenter(res)
	return res, nil
}

func toPoint(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lon: *lon}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
