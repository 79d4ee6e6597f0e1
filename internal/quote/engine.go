// Package quote composes fixed-route matching, distance resolution and fare
// computation into a single trip quote.
package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripfare/tripfare/internal/address"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/fare"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/trip"
)

// Method is the provenance of a quoted price.
type Method string

// MethodFixedRoute marks a price taken from a fixed route. Metered quotes carry
// the distance method instead.
const MethodFixedRoute Method = "fixed_route"

const unitCenterWarning = "Tọa độ lấy theo trung tâm đơn vị hành chính"

// TripQuote is the engine output. It is built fresh per request.
type TripQuote struct {
	Estimate   *trip.Estimate    `json:"estimate,omitempty"`
	Breakdown  *fare.Breakdown   `json:"breakdown,omitempty"`
	FixedRoute *fixedroute.Match `json:"fixed_route,omitempty"`
	Price      float64           `json:"price"`
	Method     Method            `json:"method"`
	QuotedAt   time.Time         `json:"quoted_at"`
}

// Config configures an Engine.
type Config struct {
	Resolver *distance.Resolver
	Matcher  *fixedroute.Matcher

	// Units, when set, supplies coordinates for requests that only name
	// administrative units with a known center.
	Units address.Repository

	// Metrics is optional.
	Metrics *Metrics

	Logger zerolog.Logger
}

// Engine quotes trips. It holds no per-request state.
type Engine struct {
	resolver *distance.Resolver
	matcher  *fixedroute.Matcher
	units    address.Repository
	metrics  *Metrics
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewEngine creates a quote engine. A nil Resolver uses terrain estimates only.
func NewEngine(cfg Config) *Engine {
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = distance.NewResolver(distance.ResolverConfig{Logger: cfg.Logger})
	}

	return &Engine{
		resolver: resolver,
		matcher:  cfg.Matcher,
		units:    cfg.Units,
		metrics:  cfg.Metrics,
		tracer:   otel.Tracer(instrumentationName),
		logger:   cfg.Logger,
	}
}

// ProviderName returns the routing provider behind the resolver, or "".
func (e *Engine) ProviderName() string {
	return e.resolver.ProviderName()
}

// ResolveDistance returns the trip distance or distance.ErrInsufficientInput.
func (e *Engine) ResolveDistance(ctx context.Context, req trip.Request) (*trip.Estimate, error) {
	located, centered, err := e.locate(ctx, req)
	if err != nil {
		return nil, err
	}

	est, err := e.resolver.Resolve(ctx, located)
	if err != nil {
		return nil, err
	}

	if centered {
		est.RouteInfo.Warnings = append(est.RouteInfo.Warnings, unitCenterWarning)
	}
	if est.Method == trip.MethodTerrainEstimate {
		e.metrics.recordFallback(ctx, est.RouteInfo.FallbackCode)
	}
	return est, nil
}

// ComputeFare prices a distance.
func (e *Engine) ComputeFare(distanceKm float64, cfg fare.Config) (*fare.Breakdown, error) {
	return fare.Compute(distanceKm, cfg)
}

// MatchFixedRoute returns the fixed route overriding metered pricing, or nil.
func (e *Engine) MatchFixedRoute(ctx context.Context, req trip.Request) *fixedroute.Match {
	if e.matcher == nil {
		return nil
	}
	return e.matcher.Match(ctx, req)
}

// Quote checks fixed routes first, then resolves the distance and prices it with cfg.
func (e *Engine) Quote(ctx context.Context, req trip.Request, cfg fare.Config) (*TripQuote, error) {
	ctx, span := e.tracer.Start(ctx, "quote.Quote")
	defer span.End()

	start := time.Now()

	if match := e.MatchFixedRoute(ctx, req); match != nil {
		q := &TripQuote{
			FixedRoute: match,
			Price:      match.Route.Price,
			Method:     MethodFixedRoute,
			QuotedAt:   time.Now().UTC(),
		}
		e.finish(ctx, span, q, start)
		return q, nil
	}

	est, err := e.ResolveDistance(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "distance not resolved")
		return nil, err
	}

	breakdown, err := e.ComputeFare(est.DistanceKm, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fare not computed")
		return nil, err
	}

	q := &TripQuote{
		Estimate:  est,
		Breakdown: breakdown,
		Price:     breakdown.Price,
		Method:    Method(est.Method),
		QuotedAt:  time.Now().UTC(),
	}
	e.finish(ctx, span, q, start)
	return q, nil
}

func (e *Engine) finish(ctx context.Context, span trace.Span, q *TripQuote, start time.Time) {
	span.SetAttributes(
		attribute.String("quote.method", string(q.Method)),
		attribute.Float64("quote.price", q.Price),
	)
	e.metrics.recordQuote(ctx, q.Method, time.Since(start))

	event := e.logger.Debug().
		Str("method", string(q.Method)).
		Float64("price", q.Price)
	if q.Estimate != nil {
		event = event.Float64("distance_km", q.Estimate.DistanceKm)
	}
	if q.FixedRoute != nil {
		event = event.Str("fixed_route_id", q.FixedRoute.Route.ID)
	}
	event.Msg("trip quoted")
}

// locate fills missing coordinates from administrative unit centers. Two
// units sharing one center, such as two wards that both fall back to their
// district center, cannot be priced and are refused.
func (e *Engine) locate(ctx context.Context, req trip.Request) (trip.Request, bool, error) {
	if e.units == nil || req.HasSuppliedDistance() || req.HasCoordinates() || !req.HasUnits() {
		return req, false, nil
	}

	origin, destination := req.Origin, req.Destination
	var err error
	if origin == nil {
		if origin, err = e.center(ctx, req.OriginUnit); err != nil {
			return req, false, nil
		}
	}
	if destination == nil {
		if destination, err = e.center(ctx, req.DestinationUnit); err != nil {
			return req, false, nil
		}
	}

	if geo.GreatCircleKm(*origin, *destination) == 0 {
		e.logger.Debug().
			Str("origin_district", req.OriginUnit.DistrictCode).
			Str("destination_district", req.DestinationUnit.DistrictCode).
			Str("center", origin.String()).
			Msg("unit centers coincide")
		return req, false, fmt.Errorf("%w: %w: units share the center %s", distance.ErrInsufficientInput, distance.ErrCoincidentEndpoints, origin)
	}

	req.Origin, req.Destination = origin, destination
	return req, true, nil
}

var errNoCenter = errors.New("unit has no known center")

func (e *Engine) center(ctx context.Context, ref address.UnitRef) (*geo.Point, error) {
	resolved, err := e.units.Resolve(ctx, ref)
	if err != nil {
		e.logger.Debug().Err(err).Str("province", ref.ProvinceCode).Msg("unit not resolved")
		return nil, err
	}
	if resolved.Center == nil {
		return nil, errNoCenter
	}
	p := *resolved.Center
	return &p, nil
}
