package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/events"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/quote"
	"github.com/tripfare/tripfare/internal/trip"
)

// Validation constants.
const (
	MaxNameLength  = 100
	MaxNotesLength = 500
)

var (
	timeHHMMRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)
	phoneRegex    = regexp.MustCompile(`^\+?\d[\d .\-]{7,18}$`)
)

// vietnamTime is UTC+7 all year.
var vietnamTime = time.FixedZone("ICT", 7*60*60)

// Quoter prices a trip.
type Quoter interface {
	Quote(ctx context.Context, req trip.Request, cfg fare.Config) (*quote.TripQuote, error)
}

// ConfigSelector picks the fare configuration for a booking.
type ConfigSelector interface {
	Select(ctx context.Context, name string, vehicle fare.VehicleClass) (*quote.Selection, error)
}

// ServiceConfig holds configuration for the booking service.
type ServiceConfig struct {
	Repository Repository
	Quoter     Quoter
	Configs    ConfigSelector
	// Publisher is optional; events are dropped without one.
	Publisher events.Publisher
	Logger    zerolog.Logger
}

// Service creates and reads bookings.
type Service struct {
	repo      Repository
	quoter    Quoter
	configs   ConfigSelector
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a new booking service.
func NewService(cfg ServiceConfig) *Service {
	pub := cfg.Publisher
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		repo:      cfg.Repository,
		quoter:    cfg.Quoter,
		configs:   cfg.Configs,
		publisher: pub,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// CreateInput is a booking request.
type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Trip          trip.Request
	TravelDate    string
	TravelTime    string
	Passengers    int
	Vehicle       fare.VehicleClass
	FareConfig    string
	Notes         string
}

// Create validates the input, prices the trip, stores the booking as pending
// and publishes a booking.created event. A publish failure is logged and does
// not fail the booking.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, *quote.TripQuote, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	if in.Vehicle == "" {
		in.Vehicle = fare.Vehicle4Seats
	}

	if fieldErrors := s.validateCreateInput(in); len(fieldErrors) > 0 {
		return nil, nil, &ValidationError{Errors: fieldErrors}
	}

	sel, err := s.configs.Select(ctx, in.FareConfig, in.Vehicle)
	if err != nil {
		return nil, nil, err
	}
	q, err := s.quoter.Quote(ctx, in.Trip, sel.Config)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	b := &Booking{
		ID:            "bkg_" + uuid.New().String()[:22],
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		Trip:          in.Trip,
		TravelDate:    in.TravelDate,
		TravelTime:    in.TravelTime,
		Passengers:    in.Passengers,
		Vehicle:       in.Vehicle,
		Notes:         in.Notes,
		FareConfig:    sel.Name,
		Price:         q.Price,
		Method:        string(q.Method),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if q.Estimate != nil {
		b.DistanceKm = q.Estimate.DistanceKm
		b.DurationMinutes = q.Estimate.DurationMinutes
	}
	if q.FixedRoute != nil {
		b.FixedRouteID = q.FixedRoute.Route.ID
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("store booking: %w", err)
	}

	logger := s.logger.With().Str("booking_id", b.ID).Logger()
	logger.Info().
		Float64("price", b.Price).
		Str("method", b.Method).
		Str("vehicle", string(b.Vehicle)).
		Msg("booking created")

	s.publish(ctx, logger, b)
	return b, q, nil
}

func (s *Service) publish(ctx context.Context, logger zerolog.Logger, b *Booking) {
	e, err := events.New(events.TypeBookingCreated, b.Event())
	if err == nil {
		err = s.publisher.Publish(ctx, e)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to publish booking event")
	}
}

// Get retrieves a booking by ID.
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.repo.Get(ctx, id)
}

// List returns bookings newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*Booking, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, &ValidationError{Errors: []models.FieldError{{Field: "status", Message: "is not a known status"}}}
	}
	return s.repo.List(ctx, opts)
}

// UpdateStatus moves a booking to status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	if !status.Valid() {
		return nil, &ValidationError{Errors: []models.FieldError{{Field: "status", Message: "is not a known status"}}}
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) validateCreateInput(in CreateInput) []models.FieldError {
	var errs []models.FieldError

	switch {
	case in.CustomerName == "":
		errs = append(errs, models.FieldError{Field: "customerName", Message: "is required"})
	case len([]rune(in.CustomerName)) > MaxNameLength:
		errs = append(errs, models.FieldError{Field: "customerName", Message: "must be at most 100 characters"})
	}

	switch {
	case in.CustomerPhone == "":
		errs = append(errs, models.FieldError{Field: "customerPhone", Message: "is required"})
	case !phoneRegex.MatchString(in.CustomerPhone):
		errs = append(errs, models.FieldError{Field: "customerPhone", Message: "must be a phone number"})
	}

	if in.CustomerEmail != "" {
		if _, err := mail.ParseAddress(in.CustomerEmail); err != nil {
			errs = append(errs, models.FieldError{Field: "customerEmail", Message: "must be an email address"})
		}
	}

	if in.TravelDate == "" {
		errs = append(errs, models.FieldError{Field: "travelDate", Message: "is required"})
	} else if d, err := time.ParseInLocation("2006-01-02", in.TravelDate, vietnamTime); err != nil {
		errs = append(errs, models.FieldError{Field: "travelDate", Message: "must be in YYYY-MM-DD format"})
	} else {
		y, m, day := s.now().In(vietnamTime).Date()
		if d.Before(time.Date(y, m, day, 0, 0, 0, 0, vietnamTime)) {
			errs = append(errs, models.FieldError{Field: "travelDate", Message: "must not be in the past"})
		}
	}

	if in.TravelTime == "" {
		errs = append(errs, models.FieldError{Field: "travelTime", Message: "is required"})
	} else if !timeHHMMRegex.MatchString(in.TravelTime) {
		errs = append(errs, models.FieldError{Field: "travelTime", Message: "must be in HH:mm format"})
	}

	vehicle, ok := fare.LookupVehicle(in.Vehicle)
	if !ok {
		errs = append(errs, models.FieldError{Field: "vehicleClass", Message: "is not a known vehicle class"})
	}
	switch {
	case in.Passengers < 1:
		errs = append(errs, models.FieldError{Field: "passengers", Message: "must be at least 1"})
	case ok && in.Passengers > vehicle.MaxPassengers:
		errs = append(errs, models.FieldError{
			Field:   "passengers",
			Message: fmt.Sprintf("must be at most %d for %s", vehicle.MaxPassengers, vehicle.Name),
		})
	}

	if len([]rune(in.Notes)) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "notes", Message: "must be at most 500 characters"})
	}

	t := in.Trip
	if !t.HasCoordinates() && !t.HasSuppliedDistance() && !t.HasAddresses() && !t.HasUnits() {
		errs = append(errs, models.FieldError{Field: "origin", Message: "pickup and drop-off are required"})
	}

	return errs
}

// ValidationError carries per-field problems with a request.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
