// Package config loads TripFare settings from the environment. A .env file in
// the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tripfare/tripfare/internal/database"
	"github.com/tripfare/tripfare/internal/fare"
)

// Routing providers.
const (
	ProviderGoogle = "google"
	ProviderORS    = "ors"
	ProviderNone   = "none"
)

// Event backends.
const (
	EventsPubSub = "pubsub"
	EventsNATS   = "nats"
	EventsNone   = "none"
)

// MaxRoutingTimeout caps ROUTING_TIMEOUT so a slow provider cannot hold a quote.
const MaxRoutingTimeout = 10 * time.Second

// Config is the process configuration shared by the binaries.
type Config struct {
	Port        string
	Environment string

	OTelEnabled  bool
	OTLPEndpoint string
	RequireTLS   bool

	Database database.Config
	// RedisAddr enables the shared routing cache when set.
	RedisAddr string

	RoutingProvider  string
	GoogleMapsAPIKey string
	ORSAPIKey        string
	RoutingTimeout   time.Duration
	RoutingCacheTTL  time.Duration
	AvoidTolls       bool

	FareConfigName string
	FareModel      fare.Model

	EventsBackend      string
	PubSubProjectID    string
	PubSubTopic        string
	PubSubSubscription string
	NATSURL            string

	TelegramBotToken string
	TelegramChatID   string
	BrevoAPIKey      string
	BrevoSenderEmail string
	NotifyEmail      string

	MetricsAddr string
}

// Load reads the configuration. Invalid values are errors; missing values take defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenvDefault("APP_PORT", "8080"),
		Environment:        getenvDefault("APP_ENV", "development"),
		OTLPEndpoint:       getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Database:           database.ConfigFromEnv(),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RoutingProvider:    strings.ToLower(getenvDefault("ROUTING_PROVIDER", ProviderGoogle)),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		FareConfigName:     getenvDefault("FARE_CONFIG_NAME", fare.DefaultConfigName),
		FareModel:          fare.Model(strings.ToLower(getenvDefault("FARE_MODEL", string(fare.ModelFlat)))),
		EventsBackend:      strings.ToLower(getenvDefault("EVENTS_BACKEND", EventsNone)),
		PubSubProjectID:    os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubTopic:        getenvDefault("PUBSUB_TOPIC", "booking-events"),
		PubSubSubscription: getenvDefault("PUBSUB_SUBSCRIPTION", "booking-events-worker"),
		NATSURL:            getenvDefault("NATS_URL", "nats://127.0.0.1:4222"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:     os.Getenv("TELEGRAM_CHAT_ID"),
		BrevoAPIKey:        os.Getenv("BREVO_API_KEY"),
		BrevoSenderEmail:   getenvDefault("BREVO_SENDER_EMAIL", "no-reply@tripfare.vn"),
		NotifyEmail:        os.Getenv("NOTIFY_EMAIL"),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
	}

	var err error
	if cfg.OTelEnabled, err = getenvBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.RequireTLS, err = getenvBool("REQUIRE_TLS", false); err != nil {
		return nil, err
	}
	if cfg.AvoidTolls, err = getenvBool("ROUTING_AVOID_TOLLS", true); err != nil {
		return nil, err
	}
	if cfg.RoutingTimeout, err = getenvDuration("ROUTING_TIMEOUT", MaxRoutingTimeout); err != nil {
		return nil, err
	}
	if cfg.RoutingTimeout > MaxRoutingTimeout {
		cfg.RoutingTimeout = MaxRoutingTimeout
	}
	if cfg.RoutingCacheTTL, err = getenvDuration("ROUTING_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RoutingProvider {
	case ProviderGoogle, ProviderORS, ProviderNone:
	default:
		return fmt.Errorf("invalid ROUTING_PROVIDER: %q", c.RoutingProvider)
	}
	switch c.FareModel {
	case fare.ModelFlat, fare.ModelTiered:
	default:
		return fmt.Errorf("invalid FARE_MODEL: %q", c.FareModel)
	}
	switch c.EventsBackend {
	case EventsPubSub:
		if c.PubSubProjectID == "" {
			return fmt.Errorf("PUBSUB_PROJECT_ID is required when EVENTS_BACKEND=%s", EventsPubSub)
		}
	case EventsNATS, EventsNone:
	default:
		return fmt.Errorf("invalid EVENTS_BACKEND: %q", c.EventsBackend)
	}
	return nil
}

// RoutingAPIKey returns the key for the selected provider.
func (c *Config) RoutingAPIKey() string {
	switch c.RoutingProvider {
	case ProviderGoogle:
		return c.GoogleMapsAPIKey
	case ProviderORS:
		return c.ORSAPIKey
	default:
		return ""
	}
}

// StandardTieredConfig names the seeded tiered configuration.
const StandardTieredConfig = "standard"

// ActiveFareConfig is the fare configuration used until an operator picks
// another one. FARE_MODEL=tiered switches the untouched default to the seeded
// tiered configuration.
func (c *Config) ActiveFareConfig() string {
	if c.FareConfigName == fare.DefaultConfigName && c.FareModel == fare.ModelTiered {
		return StandardTieredConfig
	}
	return c.FareConfigName
}

// IsProduction reports whether APP_ENV names production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s: %q", k, v)
}

func getenvDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Plain integers are seconds.
		secs, convErr := strconv.Atoi(v)
		if convErr != nil {
			return 0, fmt.Errorf("invalid %s: %q", k, v)
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return d, nil
}
