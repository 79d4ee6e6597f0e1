// Package booking records accepted quotes as customer bookings and announces
// them to downstream consumers.
package booking

import (
	"errors"
	"time"

	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/trip"
)

// Repository errors.
var (
	ErrBookingNotFound = errors.New("booking not found")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is a quoted trip a customer asked to take.
type Booking struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string

	Trip       trip.Request
	TravelDate string // YYYY-MM-DD
	TravelTime string // HH:mm
	Passengers int
	Vehicle    fare.VehicleClass
	Notes      string

	// Priced at creation time.
	FareConfig      string
	DistanceKm      float64
	DurationMinutes float64
	Price           float64
	Method          string
	FixedRouteID    string

	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FromAddress is the display text of the pickup point.
func (b *Booking) FromAddress() string {
	switch {
	case b.Trip.OriginAddress != "":
		return b.Trip.OriginAddress
	case b.Trip.Origin != nil:
		return b.Trip.Origin.String()
	}
	return ""
}

// ToAddress is the display text of the drop-off point.
func (b *Booking) ToAddress() string {
	switch {
	case b.Trip.DestinationAddress != "":
		return b.Trip.DestinationAddress
	case b.Trip.Destination != nil:
		return b.Trip.Destination.String()
	}
	return ""
}

// CreatedEvent is the payload of a booking.created event.
type CreatedEvent struct {
	BookingID       string    `json:"bookingId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CustomerEmail   string    `json:"customerEmail,omitempty"`
	FromAddress     string    `json:"fromAddress"`
	ToAddress       string    `json:"toAddress"`
	TravelDate      string    `json:"travelDate"`
	TravelTime      string    `json:"travelTime"`
	Passengers      int       `json:"passengers"`
	VehicleClass    string    `json:"vehicleClass"`
	DistanceKm      float64   `json:"distanceKm"`
	DurationMinutes float64   `json:"durationMinutes"`
	Price           float64   `json:"price"`
	Method          string    `json:"method"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Event builds the event payload for b.
func (b *Booking) Event() CreatedEvent {
	return CreatedEvent{
		BookingID:       b.ID,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		CustomerEmail:   b.CustomerEmail,
		FromAddress:     b.FromAddress(),
		ToAddress:       b.ToAddress(),
		TravelDate:      b.TravelDate,
		TravelTime:      b.TravelTime,
		Passengers:      b.Passengers,
		VehicleClass:    string(b.Vehicle),
		DistanceKm:      b.DistanceKm,
		DurationMinutes: b.DurationMinutes,
		Price:           b.Price,
		Method:          b.Method,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
	}
}

func (b *Booking) clone() *Booking {
	c := *b
	if b.Trip.Origin != nil {
		p := *b.Trip.Origin
		c.Trip.Origin = &p
	}
	if b.Trip.Destination != nil {
		p := *b.Trip.Destination
		c.Trip.Destination = &p
	}
	return &c
}
