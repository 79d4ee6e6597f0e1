package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripfare/tripfare/internal/fare"
)

var configKeys = []string{
	"APP_PORT", "APP_ENV", "OTEL_ENABLED", "REQUIRE_TLS", "ROUTING_PROVIDER", "ROUTING_TIMEOUT",
	"ROUTING_CACHE_TTL", "ROUTING_AVOID_TOLLS", "FARE_CONFIG_NAME", "FARE_MODEL", "EVENTS_BACKEND",
	"PUBSUB_PROJECT_ID", "GOOGLE_MAPS_API_KEY", "ORS_API_KEY", "REDIS_ADDR", "METRICS_ADDR",
}

// isolate clears every key and runs from an empty directory so no .env is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ProviderGoogle, cfg.RoutingProvider)
	assert.Equal(t, 10*time.Second, cfg.RoutingTimeout)
	assert.Equal(t, 30*time.Minute, cfg.RoutingCacheTTL)
	assert.True(t, cfg.AvoidTolls)
	assert.Equal(t, fare.DefaultConfigName, cfg.FareConfigName)
	assert.Equal(t, fare.ModelFlat, cfg.FareModel)
	assert.Equal(t, fare.DefaultConfigName, cfg.ActiveFareConfig())
	assert.Equal(t, EventsNone, cfg.EventsBackend)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("ROUTING_PROVIDER", "ORS")
	t.Setenv("ORS_API_KEY", "ors-key")
	t.Setenv("ROUTING_TIMEOUT", "4")
	t.Setenv("FARE_MODEL", "tiered")
	t.Setenv("OTEL_ENABLED", "yes")
	t.Setenv("EVENTS_BACKEND", "nats")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderORS, cfg.RoutingProvider)
	assert.Equal(t, "ors-key", cfg.RoutingAPIKey())
	assert.Equal(t, 4*time.Second, cfg.RoutingTimeout)
	assert.Equal(t, fare.ModelTiered, cfg.FareModel)
	assert.Equal(t, StandardTieredConfig, cfg.ActiveFareConfig())
	assert.True(t, cfg.OTelEnabled)
	assert.Equal(t, EventsNATS, cfg.EventsBackend)
}

func TestLoad_RoutingTimeoutIsCapped(t *testing.T) {
	isolate(t)
	t.Setenv("ROUTING_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MaxRoutingTimeout, cfg.RoutingTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"provider":       {"ROUTING_PROVIDER": "here"},
		"fare model":     {"FARE_MODEL": "zonal"},
		"events backend": {"EVENTS_BACKEND": "kafka"},
		"pubsub project": {"EVENTS_BACKEND": "pubsub"},
		"bool":           {"OTEL_ENABLED": "maybe"},
		"duration":       {"ROUTING_TIMEOUT": "soon"},
		"negative ttl":   {"ROUTING_CACHE_TTL": "-5m"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FARE_CONFIG_NAME=standard\n"), 0o600))
	// godotenv never overrides variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("FARE_CONFIG_NAME"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "standard", cfg.FareConfigName)
}
