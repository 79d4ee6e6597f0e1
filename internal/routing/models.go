// Package routing defines the driving-directions provider contract and
// the cache decorator placed in front of concrete providers.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/tripfare/tripfare/internal/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the routing provider is down, timed out or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// ErrNoRouteFound indicates no drivable route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrMissingCredentials indicates the provider has no API key or rejected it.
	ErrMissingCredentials = errors.New("missing or invalid provider credentials")
	// ErrMalformedResponse indicates the provider answered with something that could not be parsed.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Provider defines the interface for driving-directions providers.
type Provider interface {
	// GetDirections retrieves the driving route between two points.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// TravelMode is the mode of transport requested from the provider.
type TravelMode string

// ModeDriving is the only mode the quoting engine asks for.
const ModeDriving TravelMode = "driving"

// DirectionsRequest is the request for computing a route.
type DirectionsRequest struct {
	Origin      geo.Point
	Destination geo.Point
	Mode        TravelMode
	AvoidTolls  bool
}

// DirectionsResponse is the provider answer. Routes[0] is the preferred route.
type DirectionsResponse struct {
	Routes    []Route   `json:"routes"`
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Route represents a single route option.
type Route struct {
	DistanceMeters  int      `json:"distance_meters"`
	DurationSeconds int      `json:"duration_seconds"`
	Summary         string   `json:"summary,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	DistanceText    string   `json:"distance_text,omitempty"`
	DurationText    string   `json:"duration_text,omitempty"`
	StepsCount      int      `json:"steps_count,omitempty"`
}

// Error provides detailed error information from the routing provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

// ValidateRequest returns an *Error wrapping ErrInvalidCoordinates when either endpoint is out of range.
func ValidateRequest(provider string, req DirectionsRequest) error {
	if err := req.Origin.Validate(); err != nil {
		return &Error{
			Provider: provider,
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if err := req.Destination.Validate(); err != nil {
		return &Error{
			Provider: provider,
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	return nil
}
