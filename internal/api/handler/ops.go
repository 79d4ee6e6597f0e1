// Package handler provides HTTP handlers for the TripFare API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api/models"
	"github.com/tripfare/tripfare/internal/api/response"
	"github.com/tripfare/tripfare/internal/geo"
	"github.com/tripfare/tripfare/internal/notify"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/trip"
)

const (
	pingTimeout  = 2 * time.Second
	probeTimeout = 15 * time.Second
)

// Reference points of the routing probe, across central Ho Chi Minh City.
var (
	ProbeOrigin      = geo.Point{Lat: 10.762622, Lon: 106.660172}
	ProbeDestination = geo.Point{Lat: 10.732599, Lon: 106.719749}
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is a named readiness dependency.
type Check struct {
	Name   string
	Pinger Pinger
}

// DistanceResolver is the part of the engine the routing probe exercises.
type DistanceResolver interface {
	ProviderName() string
	ResolveDistance(ctx context.Context, req trip.Request) (*trip.Estimate, error)
}

// ProviderSwitch reports whether the live routing provider is enabled.
type ProviderSwitch interface {
	RoutingProviderEnabled(ctx context.Context) bool
}

// BotChecker verifies chat notifier credentials.
type BotChecker interface {
	Configured() bool
	TestConnection(ctx context.Context) (*notify.BotInfo, error)
}

// OpsHandlerConfig holds the dependencies of the operational endpoints.
type OpsHandlerConfig struct {
	Version   string
	BuildTime string
	Checks    []Check
	Resolver  DistanceResolver
	Switch    ProviderSwitch
	Registry  *resilience.Registry
	// Telegram is optional.
	Telegram BotChecker
	Logger   zerolog.Logger
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsHandlerConfig
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsHandlerConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]any{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. It answers 503 when any
// dependency fails its ping.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ready := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Checks: make([]models.DependencyCheck, 0, len(h.cfg.Checks)),
	}

	for _, c := range h.cfg.Checks {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := c.Pinger.Ping(ctx)
		cancel()

		check := models.DependencyCheck{Name: c.Name, Status: models.HealthStatusOK}
		if err != nil {
			check.Status = models.HealthStatusFail
			check.Detail = err.Error()
			ready.Status = models.HealthStatusFail
			h.cfg.Logger.Warn().Err(err).Str("dependency", c.Name).Msg("readiness check failed")
		}
		ready.Checks = append(ready.Checks, check)
	}

	status := http.StatusOK
	if ready.Status != models.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, ready)
}

// RoutingStatus handles GET /v1/ops/routing. It reports breaker states and
// resolves a probe trip, showing whether the provider or the fallback answered.
func (h *OpsHandler) RoutingStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := models.RoutingStatus{
		Status:  models.HealthStatusOK,
		Enabled: true,
		Time:    models.Timestamp(time.Now()),
	}
	if h.cfg.Resolver != nil {
		status.Provider = h.cfg.Resolver.ProviderName()
	}
	if h.cfg.Switch != nil {
		status.Enabled = h.cfg.Switch.RoutingProviderEnabled(ctx)
	}
	if h.cfg.Registry != nil {
		for _, ph := range h.cfg.Registry.GetAllHealth() {
			status.Breakers = append(status.Breakers, toProviderStatus(ph))
		}
	}

	if h.cfg.Resolver != nil {
		probe, err := h.probe(ctx)
		if err != nil {
			h.cfg.Logger.Error().Err(err).Msg("routing probe failed")
			status.Status = models.HealthStatusFail
		} else {
			status.Probe = probe
			if status.Provider != "" && probe.Method != string(trip.MethodRoutingProvider) {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	if h.cfg.Telegram != nil && h.cfg.Telegram.Configured() {
		status.Notifiers = append(status.Notifiers, h.checkTelegram(ctx))
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) probe(ctx context.Context) (*models.RoutingProbe, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	origin, destination := ProbeOrigin, ProbeDestination
	start := time.Now()
	est, err := h.cfg.Resolver.ResolveDistance(ctx, trip.Request{Origin: &origin, Destination: &destination})
	if err != nil {
		return nil, err
	}
	return &models.RoutingProbe{
		Origin:          models.Point{Lat: origin.Lat, Lon: origin.Lon},
		Destination:     models.Point{Lat: destination.Lat, Lon: destination.Lon},
		DistanceKm:      est.DistanceKm,
		DurationMinutes: est.DurationMinutes,
		Method:          string(est.Method),
		FallbackReason:  est.RouteInfo.FallbackReason,
		LatencyMs:       time.Since(start).Milliseconds(),
	}, nil
}

func (h *OpsHandler) checkTelegram(ctx context.Context) models.ProviderStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	st := models.ProviderStatus{Provider: notify.TelegramName, Status: models.HealthStatusOK}
	bot, err := h.cfg.Telegram.TestConnection(ctx)
	if err != nil {
		st.Status = models.HealthStatusFail
		st.Message = err.Error()
		var tgErr *notify.TelegramError
		if !errors.As(err, &tgErr) {
			h.cfg.Logger.Warn().Err(err).Msg("telegram unreachable")
		}
		return st
	}
	st.Message = "@" + bot.Username
	return st
}

func toProviderStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	st := models.ProviderStatus{
		Provider:     ph.Name,
		CircuitState: ph.CircuitState.String(),
		Message:      ph.LastError,
	}
	switch {
	case ph.IsHealthy():
		st.Status = models.HealthStatusOK
	case ph.IsDegraded():
		st.Status = models.HealthStatusDegraded
	default:
		st.Status = models.HealthStatusFail
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		st.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		st.LastFailureAt = &ts
	}
	return st
}
