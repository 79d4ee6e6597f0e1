// Package googlemaps provides a driving-directions provider backed by the Google Directions API.
package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "google"

	// DefaultTimeout bounds a single Directions call.
	DefaultTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the Google Directions provider.
type ClientConfig struct {
	// APIKey is the Google Maps API key. An empty key fails every call with ErrMissingCredentials.
	APIKey string

	// BaseURL overrides the API host (tests).
	BaseURL string

	// Timeout is the request timeout (default 10s).
	Timeout time.Duration

	// Language and Region bias results (default "vi" and "vn").
	Language string
	Region   string

	// CircuitBreaker overrides the default breaker settings (optional).
	CircuitBreaker *resilience.CircuitBreakerConfig

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	Logger zerolog.Logger
}

// Client implements routing.Provider using googlemaps.github.io/maps.
type Client struct {
	maps     *maps.Client
	guard    *resilience.Guard[[]maps.Route]
	language string
	region   string
	logger   zerolog.Logger
}

var _ routing.Provider = (*Client)(nil)

// NewClient creates the provider. A missing key is not an error here so the
// service can start and fall back to estimates; calls report ErrMissingCredentials.
func NewClient(cfg ClientConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	language := cfg.Language
	if language == "" {
		language = "vi"
	}
	region := cfg.Region
	if region == "" {
		region = "vn"
	}

	cbConfig := resilience.DefaultCircuitBreakerConfig(ProviderName)
	cbConfig.IsSuccessful = countsAsHealthy
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	c := &Client{
		guard:    resilience.NewGuard[[]maps.Route](cbConfig, cfg.Registry),
		language: language,
		region:   region,
		logger:   cfg.Logger,
	}

	if cfg.APIKey == "" {
		return c, nil
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}

	mc, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	c.maps = mc

	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetDirections asks Google for a driving route, avoiding tolls when requested.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if err := routing.ValidateRequest(ProviderName, req); err != nil {
		return nil, err
	}
	if c.maps == nil {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_API_KEY",
			Message:  "google maps API key is not configured",
			Err:      routing.ErrMissingCredentials,
		}
	}

	dr := &maps.DirectionsRequest{
		Origin:      formatPoint(req.Origin.Lat, req.Origin.Lon),
		Destination: formatPoint(req.Destination.Lat, req.Destination.Lon),
		Mode:        maps.TravelModeDriving,
		Language:    c.language,
		Region:      c.region,
	}
	if req.AvoidTolls {
		dr.Avoid = []maps.Avoid{maps.AvoidTolls}
	}

	c.logger.Debug().
		Str("origin", dr.Origin).
		Str("destination", dr.Destination).
		Msg("requesting directions from google")

	routes, err := c.guard.Execute(ctx, func(ctx context.Context) ([]maps.Route, error) {
		routes, _, err := c.maps.Directions(ctx, dr)
		return routes, err
	})
	if err != nil {
		return nil, mapError(err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "google returned no routes",
			Err:      routing.ErrNoRouteFound,
		}
	}

	out := &routing.DirectionsResponse{
		Routes:    make([]routing.Route, 0, len(routes)),
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
	for i := range routes {
		out.Routes = append(out.Routes, toRoute(&routes[i]))
	}

	c.logger.Debug().
		Int("distance_m", out.Routes[0].DistanceMeters).
		Int("duration_s", out.Routes[0].DurationSeconds).
		Msg("received directions from google")

	return out, nil
}

func toRoute(r *maps.Route) routing.Route {
	route := routing.Route{
		Summary:  r.Summary,
		Warnings: append([]string(nil), r.Warnings...),
	}

	var duration time.Duration
	var texts []string
	for _, leg := range r.Legs {
		route.DistanceMeters += leg.Distance.Meters
		duration += leg.Duration
		route.StepsCount += len(leg.Steps)
		texts = append(texts, leg.Distance.HumanReadable)
	}
	route.DurationSeconds = int(duration / time.Second)
	route.DistanceText = strings.Join(texts, " + ")
	route.DurationText = fmt.Sprintf("%d phút", int(duration.Round(time.Minute)/time.Minute))

	return route
}

// mapError converts maps library and transport errors to routing errors.
// The library reports API status codes as "maps: STATUS - message".
func mapError(err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &routing.Error{
			Provider: ProviderName,
			Code:     "CIRCUIT_OPEN",
			Message:  "google directions circuit is open",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &routing.Error{
			Provider: ProviderName,
			Code:     "TIMEOUT",
			Message:  "google directions request did not complete",
			Err:      fmt.Errorf("%w: %w", routing.ErrProviderUnavailable, err),
		}
	}

	msg := err.Error()
	status := "REQUEST_FAILED"
	if rest, ok := strings.CutPrefix(msg, "maps: "); ok {
		status, _, _ = strings.Cut(rest, " ")
	}

	var sentinel error
	switch status {
	case "ZERO_RESULTS", "NOT_FOUND", "MAX_ROUTE_LENGTH_EXCEEDED":
		sentinel = routing.ErrNoRouteFound
	case "REQUEST_DENIED":
		sentinel = routing.ErrMissingCredentials
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		sentinel = routing.ErrRateLimitExceeded
	case "INVALID_REQUEST":
		sentinel = routing.ErrInvalidCoordinates
	case "REQUEST_FAILED", "UNKNOWN_ERROR":
		sentinel = routing.ErrProviderUnavailable
	default:
		sentinel = routing.ErrMalformedResponse
	}

	return &routing.Error{
		Provider: ProviderName,
		Code:     status,
		Message:  msg,
		Err:      sentinel,
	}
}

// countsAsHealthy keeps "no route" answers from tripping the breaker.
func countsAsHealthy(err error) bool {
	if resilience.IgnoreCancellation(err) {
		return true
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "maps: ZERO_RESULTS") || strings.HasPrefix(msg, "maps: NOT_FOUND")
}

func formatPoint(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}
