package distance

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/routing"
	"github.com/tripfare/tripfare/internal/trip"
)

// DefaultProviderTimeout bounds a single provider call.
const DefaultProviderTimeout = 10 * time.Second

// AdapterConfig configures a ProviderAdapter.
type AdapterConfig struct {
	// Provider is the directions source. Nil makes every query fail with ErrProviderNotConfigured.
	Provider routing.Provider

	// Timeout bounds each call (default: 10s).
	Timeout time.Duration

	// AvoidTolls asks the provider for a toll-free route.
	AvoidTolls bool

	Logger zerolog.Logger
}

// ProviderAdapter performs one bounded provider call and converts the answer into an Estimate.
// It never retries.
type ProviderAdapter struct {
	provider   routing.Provider
	timeout    time.Duration
	avoidTolls bool
	logger     zerolog.Logger
}

// NewProviderAdapter creates an adapter.
func NewProviderAdapter(cfg AdapterConfig) *ProviderAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}

	return &ProviderAdapter{
		provider:   cfg.Provider,
		timeout:    timeout,
		avoidTolls: cfg.AvoidTolls,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name, or "" when none is configured.
func (a *ProviderAdapter) Name() string {
	if a == nil || a.provider == nil {
		return ""
	}
	return a.provider.Name()
}

// Configured reports whether a provider is wired in.
func (a *ProviderAdapter) Configured() bool {
	return a != nil && a.provider != nil
}

// Query asks the provider for the driving route. Every failure is a *ProviderError.
func (a *ProviderAdapter) Query(ctx context.Context, origin, destination geo.Point) (*trip.Estimate, error) {
	if !a.Configured() {
		return nil, &ProviderError{Err: ErrProviderNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.provider.GetDirections(ctx, routing.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        routing.ModeDriving,
		AvoidTolls:  a.avoidTolls,
	})
	if err != nil {
		return nil, &ProviderError{Provider: a.provider.Name(), Err: err}
	}

	if resp == nil || len(resp.Routes) == 0 {
		return nil, &ProviderError{Provider: a.provider.Name(), Err: routing.ErrNoRouteFound}
	}

	route := resp.Routes[0]
	if route.DistanceMeters <= 0 || route.DurationSeconds < 0 {
		return nil, &ProviderError{Provider: a.provider.Name(), Err: routing.ErrMalformedResponse}
	}

	providerName := resp.Provider
	if providerName == "" {
		providerName = a.provider.Name()
	}

	a.logger.Debug().
		Str("provider", providerName).
		Int("distance_m", route.DistanceMeters).
		Int("duration_s", route.DurationSeconds).
		Dur("latency", time.Since(start)).
		Msg("provider route resolved")

	var warnings []string
	if len(route.Warnings) > 0 {
		warnings = append([]string(nil), route.Warnings...)
	}

	return &trip.Estimate{
		DistanceKm:      round(float64(route.DistanceMeters)/1000, 2),
		DurationMinutes: round(float64(route.DurationSeconds)/60, 1),
		DurationKnown:   true,
		Method:          trip.MethodRoutingProvider,
		RouteInfo: trip.RouteInfo{
			Summary:                route.Summary,
			Warnings:               warnings,
			DistanceText:           route.DistanceText,
			DurationText:           route.DurationText,
			Provider:               providerName,
			ProviderDistanceMeters: route.DistanceMeters,
			StepsCount:             route.StepsCount,
		},
	}, nil
}
