package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    Timestamp      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}

// Readiness reports each dependency checked by GET /v1/ops/ready.
type Readiness struct {
	Status HealthStatus      `json:"status"`
	Time   Timestamp         `json:"time"`
	Checks []DependencyCheck `json:"checks"`
}

// DependencyCheck is the result of pinging one dependency.
type DependencyCheck struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// RoutingStatus is the response of GET /v1/ops/routing.
type RoutingStatus struct {
	Status    HealthStatus     `json:"status"`
	Provider  string           `json:"provider,omitempty"`
	Enabled   bool             `json:"enabled"`
	Breakers  []ProviderStatus `json:"breakers,omitempty"`
	Probe     *RoutingProbe    `json:"probe,omitempty"`
	Time      Timestamp        `json:"time"`
	Notifiers []ProviderStatus `json:"notifiers,omitempty"`
}

// RoutingProbe is the outcome of a test quote between two reference points.
type RoutingProbe struct {
	Origin          Point   `json:"origin"`
	Destination     Point   `json:"destination"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes float64 `json:"durationMinutes"`
	Method          string  `json:"method"`
	FallbackReason  string  `json:"fallbackReason,omitempty"`
	LatencyMs       int64   `json:"latencyMs"`
}

// ProviderStatus represents the status of an outbound dependency.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState,omitempty"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       string       `json:"message,omitempty"`
}
