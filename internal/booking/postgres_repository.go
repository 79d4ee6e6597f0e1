package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/geo"
)

// PostgresRepository stores bookings in the bookings table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL booking repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const bookingColumns = `
	id, customer_name, customer_phone, customer_email,
	from_address, to_address, from_lat, from_lng, to_lat, to_lng,
	from_province, from_district, from_ward, to_province, to_district, to_ward,
	travel_date, travel_time, passenger_count, vehicle_type, notes,
	fare_config, distance_km, duration_minutes, price, method, fixed_route_id,
	status, created_at, updated_at`

// Get retrieves a booking by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// List returns bookings newest first.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) ([]*Booking, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, string(opts.Status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create stores a new booking.
func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''), NULLIF($15, ''), NULLIF($16, ''),
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, NULLIF($27, ''), $28, $29, $30)
	`

	fromLat, fromLng := coords(b.Trip.Origin)
	toLat, toLng := coords(b.Trip.Destination)

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.CustomerName, b.CustomerPhone, b.CustomerEmail,
		b.Trip.OriginAddress, b.Trip.DestinationAddress, fromLat, fromLng, toLat, toLng,
		b.Trip.OriginUnit.ProvinceCode, b.Trip.OriginUnit.DistrictCode, b.Trip.OriginUnit.WardCode,
		b.Trip.DestinationUnit.ProvinceCode, b.Trip.DestinationUnit.DistrictCode, b.Trip.DestinationUnit.WardCode,
		b.TravelDate, b.TravelTime, b.Passengers, string(b.Vehicle), b.Notes,
		b.FareConfig, b.DistanceKm, b.DurationMinutes, b.Price, b.Method, b.FixedRouteID,
		string(b.Status), b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// UpdateStatus moves a booking to status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func coords(p *geo.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lat, lon := p.Lat, p.Lon
	return &lat, &lon
}

func point(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lon: *lon}
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b                                  Booking
		fromLat, fromLng, toLat, toLng     *float64
		fromProv, fromDist, fromWard       *string
		toProv, toDist, toWard, fixedRoute *string
		vehicle, status                    string
	)
	err := row.Scan(
		&b.ID, &b.CustomerName, &b.CustomerPhone, &b.CustomerEmail,
		&b.Trip.OriginAddress, &b.Trip.DestinationAddress, &fromLat, &fromLng, &toLat, &toLng,
		&fromProv, &fromDist, &fromWard, &toProv, &toDist, &toWard,
		&b.TravelDate, &b.TravelTime, &b.Passengers, &vehicle, &b.Notes,
		&b.FareConfig, &b.DistanceKm, &b.DurationMinutes, &b.Price, &b.Method, &fixedRoute,
		&status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Trip.Origin = point(fromLat, fromLng)
	b.Trip.Destination = point(toLat, toLng)
	b.Trip.OriginUnit.ProvinceCode = deref(fromProv)
	b.Trip.OriginUnit.DistrictCode = deref(fromDist)
	b.Trip.OriginUnit.WardCode = deref(fromWard)
	b.Trip.DestinationUnit.ProvinceCode = deref(toProv)
	b.Trip.DestinationUnit.DistrictCode = deref(toDist)
	b.Trip.DestinationUnit.WardCode = deref(toWard)
	b.FixedRouteID = deref(fixedRoute)
	b.Vehicle = fare.VehicleClass(vehicle)
	b.Status = Status(status)
	return &b, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ Repository = (*PostgresRepository)(nil)
