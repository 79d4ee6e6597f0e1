package quote

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/tripfare/tripfare/internal/quote"

// Metrics records quote outcomes.
type Metrics struct {
	quotesTotal   metric.Int64Counter
	quoteDuration metric.Float64Histogram
	fallbacks     metric.Int64Counter
}

// NewMetrics creates the quote instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	quotesTotal, err := meter.Int64Counter(
		"tripfare.quote.total",
		metric.WithDescription("Quotes produced, by pricing method"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return nil, err
	}

	quoteDuration, err := meter.Float64Histogram(
		"tripfare.quote.duration",
		metric.WithDescription("Time to produce a quote in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	fallbacks, err := meter.Int64Counter(
		"tripfare.distance.fallback.total",
		metric.WithDescription("Distance resolutions answered by the terrain estimate"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotesTotal:   quotesTotal,
		quoteDuration: quoteDuration,
		fallbacks:     fallbacks,
	}, nil
}

func (m *Metrics) recordQuote(ctx context.Context, method Method, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("method", string(method)))
	m.quotesTotal.Add(ctx, 1, attrs)
	m.quoteDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) recordFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
