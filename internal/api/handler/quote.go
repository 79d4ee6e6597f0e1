package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/quote"
	"github.com/tripfare/tripfare/internal/trip"
)

// Quoter is the quoting engine as seen by the HTTP layer.
type Quoter interface {
	Quote(ctx context.Context, req trip.Request, cfg fare.Config) (*quote.TripQuote, error)
	ComputeFare(distanceKm float64, cfg fare.Config) (*fare.Breakdown, error)
	MatchFixedRoute(ctx context.Context, req trip.Request) *fixedroute.Match
}

// ConfigSelector picks the fare configuration for a request.
type ConfigSelector interface {
	Select(ctx context.Context, name string, vehicle fare.VehicleClass) (*quote.Selection, error)
}

// QuoteHandler serves the pricing endpoints.
type QuoteHandler struct {
	engine  Quoter
	catalog ConfigSelector
	logger  zerolog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(engine Quoter, catalog ConfigSelector, logger zerolog.Logger) *QuoteHandler {
	return &QuoteHandler{engine: engine, catalog: catalog, logger: logger}
}

// CreateQuote handles POST /v1/quotes.
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var input models.QuoteRequest
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

	sel, err := h.catalog.Select(r.Context(), input.FareConfig, vehicle)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	q, err := h.engine.Quote(r.Context(), req, sel.Config)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toQuote(q, sel))
}

// ComputeFare handles POST /v1/fares:compute - price a known distance.
func (h *QuoteHandler) ComputeFare(w http.ResponseWriter, r *http.Request) {
	var input models.FareComputeRequest
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	var fieldErrs []models.FieldError
	if input.DistanceKm == nil {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "distanceKm", Message: "is required"})
	}
	vehicle, vehicleErr := vehicleClass(input.VehicleClass)
	if vehicleErr != nil {
		fieldErrs = append(fieldErrs, *vehicleErr)
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrs)
		return
	}

	sel, err := h.catalog.Select(r.Context(), input.FareConfig, vehicle)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	breakdown, err := h.engine.ComputeFare(*input.DistanceKm, sel.Config)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.FareComputeResponse{
		FareConfig:   sel.Name,
		VehicleClass: string(sel.Vehicle),
		Breakdown:    toBreakdown(breakdown),
	})
}

// MatchFixedRoute handles POST /v1/fixed-routes:match. It returns 404 when no
// active route covers the trip.
func (h *QuoteHandler) MatchFixedRoute(w http.ResponseWriter, r *http.Request) {
	var input models.TripInput
	if err := response.Decode(w, r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	req, fieldErrs := tripRequest(input)
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation failed", fieldErrs)
		return
	}
	if !req.HasUnits() && !req.HasAddresses() {
		response.BadRequest(w, r, "administrative units or addresses are required for both ends", nil)
		return
	}

	match := h.engine.MatchFixedRoute(r.Context(), req)
	if match == nil {
		response.NotFound(w, r, "no fixed route matches this trip")
		return
	}
	response.JSON(w, r, http.StatusOK, toFixedRouteMatch(match))
}

// ListVehicleTypes handles GET /v1/vehicle-types.
func (h *QuoteHandler) ListVehicleTypes(w http.ResponseWriter, r *http.Request) {
	items := make([]models.VehicleType, 0, len(fare.Vehicles))
	for _, v := range fare.Vehicles {
		items = append(items, models.VehicleType{
			Class:           string(v.Class),
			Name:            v.Name,
			Description:     v.Description,
			PriceMultiplier: v.Multiplier,
			MaxPassengers:   v.MaxPassengers,
		})
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"items": items})
}
