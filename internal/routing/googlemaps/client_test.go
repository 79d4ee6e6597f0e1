package googlemaps_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/routing"
	"github.com/tripfare/tripfare/internal/routing/googlemaps"
)

func saigonRequest() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      geo.Point{Lat: 10.762622, Lon: 106.660172},
		Destination: geo.Point{Lat: 10.732599, Lon: 106.719749},
		Mode:        routing.ModeDriving,
		AvoidTolls:  true,
	}
}

func newClient(t *testing.T, baseURL string, cb *resilience.CircuitBreakerConfig) *googlemaps.Client {
	t.Helper()
	c, err := googlemaps.NewClient(googlemaps.ClientConfig{
		APIKey:         "AIzaTestKey",
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		CircuitBreaker: cb,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	return c
}

func TestClient_GetDirections_Success(t *testing.T) {
	body, err := os.ReadFile("testdata/directions_ok.json")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "10.762622,106.660172", q.Get("origin"))
		assert.Equal(t, "10.732599,106.719749", q.Get("destination"))
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, "tolls", q.Get("avoid"))
		assert.Equal(t, "vi", q.Get("language"))
		assert.Equal(t, "vn", q.Get("region"))
		assert.Equal(t, "AIzaTestKey", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	resp, err := newClient(t, server.URL, nil).GetDirections(context.Background(), saigonRequest())
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)

	route := resp.Routes[0]
	assert.Equal(t, googlemaps.ProviderName, resp.Provider)
	assert.Equal(t, 9874, route.DistanceMeters)
	assert.Equal(t, 1322, route.DurationSeconds)
	assert.Equal(t, "Nguyễn Văn Linh", route.Summary)
	assert.Equal(t, "9,9 km", route.DistanceText)
	assert.Equal(t, "22 phút", route.DurationText)
	assert.Equal(t, 2, route.StepsCount)
	assert.Len(t, route.Warnings, 1)
}

func TestClient_GetDirections_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"zero results", `{"status":"ZERO_RESULTS","routes":[]}`, routing.ErrNoRouteFound},
		{"denied", `{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid."}`, routing.ErrMissingCredentials},
		{"quota", `{"status":"OVER_QUERY_LIMIT","error_message":"You have exceeded your daily request quota."}`, routing.ErrRateLimitExceeded},
		{"invalid", `{"status":"INVALID_REQUEST"}`, routing.ErrInvalidCoordinates},
		{"unknown", `{"status":"UNKNOWN_ERROR"}`, routing.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL, nil).GetDirections(context.Background(), saigonRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var rerr *routing.Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, googlemaps.ProviderName, rerr.Provider)
		})
	}
}

func TestClient_GetDirections_MissingKey(t *testing.T) {
	c, err := googlemaps.NewClient(googlemaps.ClientConfig{Logger: zerolog.Nop()})
	require.NoError(t, err)

	_, err = c.GetDirections(context.Background(), saigonRequest())
	assert.ErrorIs(t, err, routing.ErrMissingCredentials)
}

func TestClient_GetDirections_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newClient(t, server.URL, nil).GetDirections(ctx, saigonRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
}

func TestClient_CircuitOpensOnRepeatedFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"status":"UNKNOWN_ERROR"}`))
	}))
	defer server.Close()

	cb := resilience.CircuitBreakerConfig{
		Name:        googlemaps.ProviderName,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 2 },
	}
	client := newClient(t, server.URL, &cb)

	for i := 0; i < 2; i++ {
		_, err := client.GetDirections(context.Background(), saigonRequest())
		require.Error(t, err)
	}

	_, err := client.GetDirections(context.Background(), saigonRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)

	var rerr *routing.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "CIRCUIT_OPEN", rerr.Code)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_InvalidCoordinatesRejectedLocally(t *testing.T) {
	client := newClient(t, "http://127.0.0.1:1", nil)

	req := saigonRequest()
	req.Origin.Lon = 200

	_, err := client.GetDirections(context.Background(), req)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
}
