package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/quote"
)

// MaxListLimit caps the limit query parameter of list endpoints.
const MaxListLimit = 200

// BookingService is the booking workflow as seen by the HTTP layer.
type BookingService interface {
	Create(ctx context.Context, in booking.CreateInput) (*booking.Booking, *quote.TripQuote, error)
	Get(ctx context.Context, id string) (*booking.Booking, error)
	List(ctx context.Context, opts booking.ListOptions) ([]*booking.Booking, error)
	UpdateStatus(ctx context.Context, id string, status booking.Status) (*booking.Booking, error)
}

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	service BookingService
	logger  zerolog.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingService, logger zerolog.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

// CreateBooking handles POST /v1/bookings - quote the trip and record it as pending.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var input models.BookingCreateRequest
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	req, fieldErrs := tripRequest(input.TripInput)
	vehicle, vehicleErr := vehicleClass(input.VehicleClass)
	if vehicleErr != nil {
		fieldErrs = append(fieldErrs, *vehicleErr)
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrs)
		return
	}

	b, q, err := h.service.Create(r.Context(), booking.CreateInput{
		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,
		Trip:          req,
		TravelDate:    input.TravelDate,
		TravelTime:    input.TravelTime,
		Passengers:    input.Passengers,
		Vehicle:       vehicle,
		FareConfig:    input.FareConfig,
		Notes:         input.Notes,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sel := &quote.Selection{Name: b.FareConfig, Vehicle: b.Vehicle}
	response.Created(w, r, fmt.Sprintf("/v1/bookings/%s", b.ID), models.BookingCreated{
		Booking: toBooking(b),
		Quote:   toQuote(q, sel),
	})
}

// ListBookings handles GET /v1/bookings?limit=&status=.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit := booking.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "limit", Message: fmt.Sprintf("must be an integer between 1 and %d", MaxListLimit)},
			})
			return
		}
		limit = n
	}

	items, err := h.service.List(r.Context(), booking.ListOptions{
		Limit:  limit,
		Status: booking.Status(r.URL.Query().Get("status")),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page := models.PagedBookings{
		Items: make([]models.Booking, 0, len(items)),
		Meta:  models.PagedResponseMeta{Limit: limit, Count: len(items)},
	}
	for _, b := range items {
		page.Items = append(page.Items, toBooking(b))
	}
	response.JSON(w, r, http.StatusOK, page)
}

// GetBooking handles GET /v1/bookings/{bookingId}.
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toBooking(b))
}

// UpdateBookingStatus handles PUT /v1/admin/bookings/{bookingId}/status.
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var input models.BookingStatusUpdate
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	b, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "bookingId"), booking.Status(input.Status))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toBooking(b))
}
