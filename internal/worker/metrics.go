package worker

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics is the worker's Prometheus collector.
type Metrics struct {
	reg *prometheus.Registry

	Messages       *prometheus.CounterVec // type, outcome
	Notifications  *prometheus.CounterVec // notifier, outcome
	HandleDuration prometheus.Histogram
	WarmupPairs    *prometheus.CounterVec // outcome
	WarmupDuration prometheus.Histogram
	LastWarmup     prometheus.Gauge
}

// NewMetrics creates and registers the worker metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripfare_worker_messages_total",
			Help: "Messages handled, by type and outcome.",
		}, []string{"type", "outcome"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripfare_worker_notifications_total",
			Help: "Booking notifications attempted, by notifier and outcome.",
		}, []string{"notifier", "outcome"}),
		HandleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripfare_worker_handle_duration_seconds",
			Help:    "Time spent handling one message.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		WarmupPairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripfare_worker_warmup_pairs_total",
			Help: "Routing warm-up queries, by outcome.",
		}, []string{"outcome"}),
		WarmupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripfare_worker_warmup_duration_seconds",
			Help:    "Duration of a full routing warm-up run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		LastWarmup: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripfare_worker_last_warmup_timestamp_seconds",
			Help: "Unix time of the last completed warm-up run.",
		}),
	}
	reg.MustRegister(
		m.Messages, m.Notifications, m.HandleDuration,
		m.WarmupPairs, m.WarmupDuration, m.LastWarmup,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics and /health on addr.
func (m *Metrics) Serve(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	logger.Info().Str("addr", addr).Msg("metrics listening")
	return srv
}

func (m *Metrics) message(msgType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(msgType, outcome).Inc()
	m.HandleDuration.Observe(d.Seconds())
}

func (m *Metrics) notification(notifier, outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(notifier, outcome).Inc()
}

func (m *Metrics) warmup(result *WarmupResult) {
	if m == nil {
		return
	}
	m.WarmupPairs.WithLabelValues("success").Add(float64(result.Successful))
	m.WarmupPairs.WithLabelValues("failure").Add(float64(result.Failed))
	m.WarmupDuration.Observe(result.Duration.Seconds())
	m.LastWarmup.Set(float64(result.EndTime.Unix()))
}
