package routing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/tripfare/tripfare/internal/routing"

// Metrics records provider calls and cache effectiveness. A nil *Metrics is a no-op.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	staleServed     metric.Int64Counter
}

// NewMetrics creates the routing instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"tripfare.routing.request.duration",
		metric.WithDescription("Duration of directions requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"tripfare.routing.request.total",
		metric.WithDescription("Directions requests sent to the provider"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"tripfare.routing.cache.hit",
		metric.WithDescription("Directions served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"tripfare.routing.cache.miss",
		metric.WithDescription("Directions not found fresh in cache"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	staleServed, err := meter.Int64Counter(
		"tripfare.routing.cache.stale",
		metric.WithDescription("Stale directions served after a provider error"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		staleServed:     staleServed,
	}, nil
}

func (m *Metrics) recordRequest(ctx context.Context, provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.Bool("error", err != nil),
	)
	// Detached so a cancelled caller still gets counted.
	ctx = context.WithoutCancel(ctx)
	m.requestDuration.Record(ctx, d.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}

func (m *Metrics) recordCache(ctx context.Context, provider string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("provider.name", provider))
	if hit {
		m.cacheHits.Add(ctx, 1, attrs)
		return
	}
	m.cacheMisses.Add(ctx, 1, attrs)
}

func (m *Metrics) recordStale(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.staleServed.Add(ctx, 1, metric.WithAttributes(attribute.String("provider.name", provider)))
}
