package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/api/handler"
	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/notify"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/trip"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubResolver struct {
	provider string
	est      *trip.Estimate
	err      error
	got      trip.Request
}

func (s *stubResolver) ProviderName() string { return s.provider }

func (s *stubResolver) ResolveDistance(_ context.Context, req trip.Request) (*trip.Estimate, error) {
	s.got = req
	return s.est, s.err
}

type stubSwitch bool

func (s stubSwitch) RoutingProviderEnabled(context.Context) bool { return bool(s) }

type stubBot struct {
	info *notify.BotInfo
	err  error
}

func (b stubBot) Configured() bool { return true }

func (b stubBot) TestConnection(context.Context) (*notify.BotInfo, error) { return b.info, b.err }

type stubBreaker gobreaker.State

func (s stubBreaker) CircuitBreakerState() gobreaker.State   { return gobreaker.State(s) }
func (s stubBreaker) CircuitBreakerCounts() gobreaker.Counts { return gobreaker.Counts{} }

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/v1/ops", nil))
	return rec
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		cacheErr   error
		wantCode   int
		wantStatus models.HealthStatus
	}{
		{"all dependencies up", nil, http.StatusOK, models.HealthStatusOK},
		{"cache down", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, models.HealthStatusFail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewOpsHandler(handler.OpsHandlerConfig{
				Logger: zerolog.Nop(),
				Checks: []handler.Check{
					{Name: "postgres", Pinger: pingFunc(func(context.Context) error { return nil })},
					{Name: "redis", Pinger: pingFunc(func(context.Context) error { return tt.cacheErr })},
				},
			})

			rec := serve(h.ReadinessCheck)
			require.Equal(t, tt.wantCode, rec.Code)

			var ready models.Readiness
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
			assert.Equal(t, tt.wantStatus, ready.Status)
			require.Len(t, ready.Checks, 2)
			assert.Equal(t, models.HealthStatusOK, ready.Checks[0].Status)
			assert.Equal(t, tt.wantStatus, ready.Checks[1].Status)
			if tt.cacheErr != nil {
				assert.Contains(t, ready.Checks[1].Detail, "connection refused")
			}
		})
	}
}

func TestRoutingStatus(t *testing.T) {
	providerEstimate := &trip.Estimate{DistanceKm: 9.12, DurationMinutes: 24.5, Method: trip.MethodRoutingProvider}
	fallbackEstimate := &trip.Estimate{
		DistanceKm: 8.9,
		Method:     trip.MethodTerrainEstimate,
		RouteInfo:  trip.RouteInfo{FallbackReason: "circuit open"},
	}

	tests := []struct {
		name       string
		resolver   *stubResolver
		wantStatus models.HealthStatus
		wantMethod string
	}{
		{"provider answered", &stubResolver{provider: "googlemaps", est: providerEstimate}, models.HealthStatusOK, "routing_provider"},
		{"fallback answered", &stubResolver{provider: "googlemaps", est: fallbackEstimate}, models.HealthStatusDegraded, "terrain_estimate"},
		{"no provider configured", &stubResolver{est: fallbackEstimate}, models.HealthStatusOK, "terrain_estimate"},
		{"probe failed", &stubResolver{provider: "openrouteservice", err: context.DeadlineExceeded}, models.HealthStatusFail, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewOpsHandler(handler.OpsHandlerConfig{
				Resolver: tt.resolver,
				Switch:   stubSwitch(true),
				Logger:   zerolog.Nop(),
			})

			rec := serve(h.RoutingStatus)
			require.Equal(t, http.StatusOK, rec.Code)

			var status models.RoutingStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.resolver.provider, status.Provider)

			require.NotNil(t, tt.resolver.got.Origin)
			assert.Equal(t, handler.ProbeOrigin, *tt.resolver.got.Origin)
			assert.Equal(t, handler.ProbeDestination, *tt.resolver.got.Destination)

			if tt.wantMethod == "" {
				assert.Nil(t, status.Probe)
				return
			}
			require.NotNil(t, status.Probe)
			assert.Equal(t, tt.wantMethod, status.Probe.Method)
			assert.Equal(t, tt.resolver.est.RouteInfo.FallbackReason, status.Probe.FallbackReason)
		})
	}
}

func TestRoutingStatus_BreakersAndNotifiers(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Register("googlemaps", stubBreaker(gobreaker.StateOpen))
	registry.Register("brevo", stubBreaker(gobreaker.StateClosed))
	registry.RecordFailure("googlemaps", errors.New("OVER_QUERY_LIMIT"))

	h := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Switch:   stubSwitch(false),
		Registry: registry,
		Telegram: stubBot{err: &notify.TelegramError{StatusCode: 401, Description: "Unauthorized"}},
		Logger:   zerolog.Nop(),
	})

	rec := serve(h.RoutingStatus)
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.RoutingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Enabled)
	assert.Nil(t, status.Probe)

	require.Len(t, status.Breakers, 2)
	assert.Equal(t, "brevo", status.Breakers[0].Provider)
	assert.Equal(t, models.HealthStatusOK, status.Breakers[0].Status)
	assert.Equal(t, "googlemaps", status.Breakers[1].Provider)
	assert.Equal(t, models.HealthStatusFail, status.Breakers[1].Status)
	assert.Equal(t, "open", status.Breakers[1].CircuitState)
	assert.Equal(t, "OVER_QUERY_LIMIT", status.Breakers[1].Message)
	assert.NotNil(t, status.Breakers[1].LastFailureAt)

	require.Len(t, status.Notifiers, 1)
	assert.Equal(t, notify.TelegramName, status.Notifiers[0].Provider)
	assert.Equal(t, models.HealthStatusFail, status.Notifiers[0].Status)
	assert.Contains(t, status.Notifiers[0].Message, "Unauthorized")
}

func TestRoutingStatus_TelegramOK(t *testing.T) {
	h := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Telegram: stubBot{info: &notify.BotInfo{ID: 42, Username: "tripfare_bot"}},
		Logger:   zerolog.Nop(),
	})

	rec := serve(h.RoutingStatus)

	var status models.RoutingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Len(t, status.Notifiers, 1)
	assert.Equal(t, models.HealthStatusOK, status.Notifiers[0].Status)
	assert.Equal(t, "@tripfare_bot", status.Notifiers[0].Message)
}
