package booking

import "context"

// ListOptions filters and bounds a listing.
type ListOptions struct {
	Limit  int
	Status Status
}

// DefaultListLimit applies when ListOptions.Limit is not positive.
const DefaultListLimit = 50

// Repository defines booking persistence.
type Repository interface {
	// Get retrieves a booking by ID.
	Get(ctx context.Context, id string) (*Booking, error)

	// List returns bookings newest first.
	List(ctx context.Context, opts ListOptions) ([]*Booking, error)

	// Create stores a new booking.
	Create(ctx context.Context, b *Booking) error

	// UpdateStatus moves a booking to status.
	UpdateStatus(ctx context.Context, id string, status Status) error
}
