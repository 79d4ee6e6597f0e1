package distance

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/routing"
	"github.com/tripfare/tripfare/internal/trip"
)

// Fallback reasons recorded in RouteInfo.FallbackReason.
const (
	ReasonProviderDisabled      = "routing provider disabled"
	ReasonProviderNotConfigured = "routing provider not configured"
)

// Fallback codes recorded in RouteInfo.FallbackCode. The set is closed so it
// can label metrics.
const (
	FallbackProviderDisabled      = "provider_disabled"
	FallbackProviderNotConfigured = "provider_not_configured"
	FallbackProviderUnavailable   = "provider_unavailable"
	FallbackCircuitOpen           = "circuit_open"
	FallbackTimeout               = "timeout"
	FallbackCanceled              = "canceled"
	FallbackNoRoute               = "no_route"
	FallbackRateLimited           = "rate_limited"
	FallbackInvalidCoordinates    = "invalid_coordinates"
	FallbackMissingCredentials    = "missing_credentials"
	FallbackMalformedResponse     = "malformed_response"
	FallbackProviderError         = "provider_error"
)

const providedSummary = "Khoảng cách do khách hàng cung cấp"

// ProviderSwitch turns the routing provider on and off at runtime.
type ProviderSwitch interface {
	RoutingProviderEnabled(ctx context.Context) bool
}

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Adapter is the routing provider. Nil resolves every coordinate pair by terrain estimate.
	Adapter *ProviderAdapter

	// Terrain is the fallback estimator (default: DefaultBands).
	Terrain *TerrainEstimator

	// Switch, when set, can disable the provider without a restart.
	Switch ProviderSwitch

	Logger zerolog.Logger
}

// Resolver applies the preference chain: supplied distance, then the routing
// provider (once), then the terrain estimate.
type Resolver struct {
	adapter *ProviderAdapter
	terrain *TerrainEstimator
	toggle  ProviderSwitch
	logger  zerolog.Logger
}

// NewResolver creates a resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	terrain := cfg.Terrain
	if terrain == nil {
		terrain = NewTerrainEstimator(nil)
	}

	return &Resolver{
		adapter: cfg.Adapter,
		terrain: terrain,
		toggle:  cfg.Switch,
		logger:  cfg.Logger,
	}
}

// ProviderName returns the configured provider name, or "".
func (r *Resolver) ProviderName() string {
	return r.adapter.Name()
}

// Resolve returns a fresh estimate for req. The errors are ErrInsufficientInput,
// geo.ErrInvalidPoint for out-of-range coordinates, and ErrInsufficientInput
// wrapping ErrCoincidentEndpoints when both points are the same place.
func (r *Resolver) Resolve(ctx context.Context, req trip.Request) (*trip.Estimate, error) {
	if req.HasSuppliedDistance() {
		return &trip.Estimate{
			DistanceKm:      round(req.DistanceKm, 2),
			DurationMinutes: round(req.DurationMinutes, 1),
			DurationKnown:   req.DurationMinutes > 0,
			Method:          trip.MethodProvided,
			RouteInfo: trip.RouteInfo{
				Summary: providedSummary,
			},
		}, nil
	}

	if !req.HasCoordinates() {
		return nil, ErrInsufficientInput
	}

	origin, destination := *req.Origin, *req.Destination
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if geo.GreatCircleKm(origin, destination) == 0 {
		return nil, fmt.Errorf("%w: %w at %s", ErrInsufficientInput, ErrCoincidentEndpoints, origin)
	}

	reason, code := r.skipReason(ctx)
	if reason == "" {
		est, err := r.adapter.Query(ctx, origin, destination)
		if err == nil {
			return est, nil
		}

		reason, code = err.Error(), FallbackCode(err)
		event := r.logger.Warn()
		if errors.Is(err, context.Canceled) {
			event = r.logger.Debug()
		}
		event.Err(err).
			Str("provider", r.adapter.Name()).
			Str("origin", origin.String()).
			Str("destination", destination.String()).
			Msg("routing provider failed, using terrain estimate")
	}

	est := r.terrain.Estimate(origin, destination)
	est.RouteInfo.FallbackReason = reason
	est.RouteInfo.FallbackCode = code

	r.logger.Debug().
		Float64("distance_km", est.DistanceKm).
		Str("band", est.RouteInfo.Band).
		Str("reason", reason).
		Msg("terrain estimate")

	return &est, nil
}

// skipReason explains why the provider will not be asked, or returns "".
func (r *Resolver) skipReason(ctx context.Context) (reason, code string) {
	if !r.adapter.Configured() {
		return ReasonProviderNotConfigured, FallbackProviderNotConfigured
	}
	if r.toggle != nil && !r.toggle.RoutingProviderEnabled(ctx) {
		return ReasonProviderDisabled, FallbackProviderDisabled
	}
	return "", ""
}

// FallbackCode classifies a provider failure into one of the Fallback* codes.
func FallbackCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, resilience.ErrCircuitOpen):
		return FallbackCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return FallbackTimeout
	case errors.Is(err, context.Canceled):
		return FallbackCanceled
	case errors.Is(err, ErrProviderNotConfigured):
		return FallbackProviderNotConfigured
	case errors.Is(err, routing.ErrNoRouteFound):
		return FallbackNoRoute
	case errors.Is(err, routing.ErrRateLimitExceeded):
		return FallbackRateLimited
	case errors.Is(err, routing.ErrInvalidCoordinates):
		return FallbackInvalidCoordinates
	case errors.Is(err, routing.ErrMissingCredentials):
		return FallbackMissingCredentials
	case errors.Is(err, routing.ErrMalformedResponse):
		return FallbackMalformedResponse
	case errors.Is(err, routing.ErrProviderUnavailable):
		return FallbackProviderUnavailable
	default:
		return FallbackProviderError
	}
}
