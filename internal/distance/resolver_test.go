package distance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/routing"
	"github.com/tripfare/tripfare/internal/trip"
)

type staticSwitch bool

func (s staticSwitch) RoutingProviderEnabled(context.Context) bool {
	return bool(s)
}

func coords(a, b geo.Point) trip.Request {
	return trip.Request{Origin: &a, Destination: &b}
}

func newResolver(provider routing.Provider, sw distance.ProviderSwitch) *distance.Resolver {
	var adapter *distance.ProviderAdapter
	if provider != nil {
		adapter = distance.NewProviderAdapter(distance.AdapterConfig{Provider: provider, Logger: zerolog.Nop()})
	}
	return distance.NewResolver(distance.ResolverConfig{
		Adapter: adapter,
		Switch:  sw,
		Logger:  zerolog.Nop(),
	})
}

func TestResolver_SuppliedDistance(t *testing.T) {
	provider := &stubProvider{resp: okResponse()}
	r := newResolver(provider, nil)

	req := coords(district1, district7)
	req.DistanceKm = 42.123
	req.DurationMinutes = 55

	est, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, trip.MethodProvided, est.Method)
	assert.Equal(t, 42.12, est.DistanceKm)
	assert.Equal(t, 55.0, est.DurationMinutes)
	assert.True(t, est.DurationKnown)
	assert.Zero(t, provider.callCount.Load())
}

func TestResolver_SuppliedDistanceWithoutDuration(t *testing.T) {
	est, err := newResolver(nil, nil).Resolve(context.Background(), trip.Request{DistanceKm: 12})
	require.NoError(t, err)

	assert.Equal(t, trip.MethodProvided, est.Method)
	assert.False(t, est.DurationKnown)
	assert.Zero(t, est.DurationMinutes)
}

func TestResolver_ProviderSuccess(t *testing.T) {
	provider := &stubProvider{resp: okResponse()}

	est, err := newResolver(provider, staticSwitch(true)).Resolve(context.Background(), coords(district1, district7))
	require.NoError(t, err)

	assert.Equal(t, trip.MethodRoutingProvider, est.Method)
	assert.Equal(t, 9.87, est.DistanceKm)
	assert.Empty(t, est.RouteInfo.FallbackReason)
	assert.Equal(t, int32(1), provider.callCount.Load())
}

func TestResolver_FallbackWithoutProvider(t *testing.T) {
	est, err := newResolver(nil, nil).Resolve(context.Background(), coords(district1, district7))
	require.NoError(t, err)

	assert.Equal(t, trip.MethodTerrainEstimate, est.Method)
	assert.Equal(t, 1.35, est.RouteInfo.Multiplier)
	assert.Equal(t, 35.0, est.RouteInfo.SpeedKmh)
	assert.Greater(t, est.DistanceKm, 0.0)
	assert.Greater(t, est.DurationMinutes, 0.0)
	assert.Equal(t, distance.ReasonProviderNotConfigured, est.RouteInfo.FallbackReason)
}

func TestResolver_FallbackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: &routing.Error{
		Provider: "stub",
		Code:     "RATE_LIMIT",
		Message:  "rate limit exceeded",
		Err:      routing.ErrRateLimitExceeded,
	}}

	est, err := newResolver(provider, nil).Resolve(context.Background(), coords(district1, district7))
	require.NoError(t, err)

	assert.Equal(t, trip.MethodTerrainEstimate, est.Method)
	assert.Contains(t, est.RouteInfo.FallbackReason, "rate limit")
	assert.Equal(t, distance.FallbackRateLimited, est.RouteInfo.FallbackCode)
	assert.Equal(t, int32(1), provider.callCount.Load(), "provider is tried at most once")
}

func TestResolver_FallbackOnCancelledCaller(t *testing.T) {
	provider := &stubProvider{block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	est, err := newResolver(provider, nil).Resolve(ctx, coords(district1, district7))
	require.NoError(t, err)
	assert.Equal(t, trip.MethodTerrainEstimate, est.Method)
}

func TestResolver_ProviderDisabled(t *testing.T) {
	provider := &stubProvider{resp: okResponse()}

	est, err := newResolver(provider, staticSwitch(false)).Resolve(context.Background(), coords(district1, district7))
	require.NoError(t, err)

	assert.Equal(t, trip.MethodTerrainEstimate, est.Method)
	assert.Equal(t, distance.ReasonProviderDisabled, est.RouteInfo.FallbackReason)
	assert.Equal(t, distance.FallbackProviderDisabled, est.RouteInfo.FallbackCode)
	assert.Zero(t, provider.callCount.Load())
}

func TestResolver_InsufficientInput(t *testing.T) {
	r := newResolver(&stubProvider{resp: okResponse()}, nil)

	tests := []struct {
		name string
		req  trip.Request
	}{
		{"empty request", trip.Request{}},
		{"addresses only", trip.Request{OriginAddress: "Quận 1", DestinationAddress: "Quận 7"}},
		{"one coordinate", trip.Request{Origin: &district1}},
		{"non-positive distance", trip.Request{DistanceKm: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := r.Resolve(context.Background(), tt.req)
			assert.ErrorIs(t, err, distance.ErrInsufficientInput)
			assert.Nil(t, est)
		})
	}
}

func TestResolver_InvalidCoordinates(t *testing.T) {
	_, err := newResolver(nil, nil).Resolve(context.Background(), coords(geo.Point{Lat: 91, Lon: 0}, district7))

	assert.ErrorIs(t, err, geo.ErrInvalidPoint)
	assert.NotErrorIs(t, err, distance.ErrInsufficientInput)
}

func TestResolver_CoincidentEndpoints(t *testing.T) {
	provider := &stubProvider{resp: okResponse()}

	est, err := newResolver(provider, nil).Resolve(context.Background(), coords(district1, district1))

	assert.Nil(t, est)
	assert.ErrorIs(t, err, distance.ErrInsufficientInput)
	assert.ErrorIs(t, err, distance.ErrCoincidentEndpoints)
	assert.Zero(t, provider.callCount.Load())
}

func TestFallbackCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"none", nil, ""},
		{"timeout", &distance.ProviderError{Provider: "google", Err: context.DeadlineExceeded}, distance.FallbackTimeout},
		{"canceled", context.Canceled, distance.FallbackCanceled},
		{"no route", &distance.ProviderError{Err: routing.ErrNoRouteFound}, distance.FallbackNoRoute},
		{"not configured", &distance.ProviderError{Err: distance.ErrProviderNotConfigured}, distance.FallbackProviderNotConfigured},
		{
			"provider message stays out of the code",
			&routing.Error{Provider: "openrouteservice", Code: "2010", Message: "Could not find routable point within 350m of (106.7, 10.7)", Err: routing.ErrNoRouteFound},
			distance.FallbackNoRoute,
		},
		{"unavailable", &routing.Error{Err: routing.ErrProviderUnavailable}, distance.FallbackProviderUnavailable},
		{"unknown", errors.New("boom"), distance.FallbackProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, distance.FallbackCode(tt.err))
		})
	}
}

func TestResolver_EstimatesAreNotShared(t *testing.T) {
	r := newResolver(nil, nil)

	first, err := r.Resolve(context.Background(), coords(district1, district7))
	require.NoError(t, err)
	first.RouteInfo.Warnings[0] = "changed"

	second, err := r.Resolve(context.Background(), coords(district1, district7))
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second.RouteInfo.Warnings[0])
}
