// Package notify delivers booking announcements to operators over chat and email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/fare"
)

// ErrNotConfigured is returned by a notifier that lacks credentials.
var ErrNotConfigured = errors.New("notifier not configured")

// Notifier delivers a booking announcement.
type Notifier interface {
	Name() string
	Configured() bool
	NotifyBooking(ctx context.Context, e booking.CreatedEvent) error
}

var vnd = message.NewPrinter(language.Vietnamese)

// FormatPrice renders an amount in đồng with Vietnamese digit grouping.
func FormatPrice(amount float64) string {
	return vnd.Sprintf("%d VNĐ", int64(amount))
}

// Subject is the one-line title of a booking announcement.
func Subject(e booking.CreatedEvent) string {
	return fmt.Sprintf("Booking mới #%s", e.BookingID)
}

// FormatBooking renders a plain-text summary of a booking.
func FormatBooking(e booking.CreatedEvent) string {
	vehicle := e.VehicleClass
	if v, ok := fare.LookupVehicle(fare.VehicleClass(e.VehicleClass)); ok {
		vehicle = v.Name
	}
	email := e.CustomerEmail
	if email == "" {
		email = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "BOOKING MỚI #%s\n\n", e.BookingID)
	fmt.Fprintf(&b, "Khách hàng: %s\n", e.CustomerName)
	fmt.Fprintf(&b, "SĐT: %s\n", e.CustomerPhone)
	fmt.Fprintf(&b, "Email: %s\n\n", email)
	fmt.Fprintf(&b, "Thời gian: %s %s\n", e.TravelDate, e.TravelTime)
	fmt.Fprintf(&b, "Số khách: %d người\n", e.Passengers)
	fmt.Fprintf(&b, "Loại xe: %s\n\n", vehicle)
	fmt.Fprintf(&b, "Điểm đón: %s\n", e.FromAddress)
	fmt.Fprintf(&b, "Điểm đến: %s\n\n", e.ToAddress)
	if e.DistanceKm > 0 {
		fmt.Fprintf(&b, "Khoảng cách: %.1f km\n", e.DistanceKm)
	}
	if e.DurationMinutes > 0 {
		fmt.Fprintf(&b, "Thời gian di chuyển: %.0f phút\n", e.DurationMinutes)
	}
	fmt.Fprintf(&b, "Giá: %s", FormatPrice(e.Price))
	if e.Notes != "" {
		fmt.Fprintf(&b, "\n\nGhi chú: %s", e.Notes)
	}
	return b.String()
}
