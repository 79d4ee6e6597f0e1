package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api/middleware"
	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/geo"
)

// writeError maps an error from the quoting pipeline to a problem response.
// Anything unrecognized is logged and reported as a 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var (
		validation  *booking.ValidationError
		configError *fare.ConfigError
	)

	switch {
	case errors.As(err, &validation):
		response.BadRequest(w, r, "validation failed", validation.Errors)
	case errors.Is(err, geo.ErrInvalidPoint):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, distance.ErrCoincidentEndpoints):
		response.InsufficientInput(w, r, "origin and destination resolve to the same place; give exact coordinates or a distance")
	case errors.Is(err, distance.ErrInsufficientInput):
		response.InsufficientInput(w, r, "coordinates, a distance, or addresses of known places are required for both ends of the trip")
	case errors.Is(err, fare.ErrInvalidDistance):
		response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "distanceKm", Message: err.Error()}})
	case errors.Is(err, fare.ErrConfigNotFound):
		response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "fareConfig", Message: "unknown fare configuration"}})
	case errors.As(err, &configError):
		// A stored configuration that no longer validates is an operator problem.
		logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("stored fare config is invalid")
		response.InternalError(w, r, "fare configuration is invalid")
	case errors.Is(err, booking.ErrBookingNotFound):
		response.NotFound(w, r, "booking not found")
	case errors.Is(err, fixedroute.ErrRouteNotFound):
		response.NotFound(w, r, "fixed route not found")
	case errors.Is(err, fixedroute.ErrInvalidRoute):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(w, r, "request timed out")
	default:
		logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
