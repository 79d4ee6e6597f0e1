package models

// BookingCreateRequest is the body of POST /v1/bookings.
type BookingCreateRequest struct {
	TripInput

	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	TravelDate    string `json:"travelDate"`
	TravelTime    string `json:"travelTime"`
	Passengers    int    `json:"passengers"`
	VehicleClass  string `json:"vehicleClass,omitempty"`
	FareConfig    string `json:"fareConfig,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Booking is an accepted quote.
type Booking struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	CustomerEmail   string    `json:"customerEmail,omitempty"`
	FromAddress     string    `json:"fromAddress"`
	ToAddress       string    `json:"toAddress"`
	TravelDate      string    `json:"travelDate"`
	TravelTime      string    `json:"travelTime"`
	Passengers      int       `json:"passengers"`
	VehicleClass    string    `json:"vehicleClass"`
	Notes           string    `json:"notes,omitempty"`
	FareConfig      string    `json:"fareConfig"`
	DistanceKm      float64   `json:"distanceKm"`
	DurationMinutes float64   `json:"durationMinutes"`
	Price           float64   `json:"price"`
	Method          string    `json:"method"`
	FixedRouteID    string    `json:"fixedRouteId,omitempty"`
	CreatedAt       Timestamp `json:"createdAt"`
	UpdatedAt       Timestamp `json:"updatedAt"`
}

// BookingCreated is the response to a new booking.
type BookingCreated struct {
	Booking Booking   `json:"booking"`
	Quote   TripQuote `json:"quote"`
}

// PagedBookings is a page of bookings.
type PagedBookings struct {
	Items []Booking         `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// BookingStatusUpdate is the body of PUT /v1/admin/bookings/{bookingId}/status.
type BookingStatusUpdate struct {
	Status string `json:"status"`
}
