// Package app assembles the components shared by the TripFare binaries from
// a loaded configuration.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/config"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/routing"
	"github.com/tripfare/tripfare/internal/routing/googlemaps"
	"github.com/tripfare/tripfare/internal/routing/openrouteservice"
	"github.com/tripfare/tripfare/internal/routing/rediscache"
)

// NewLogger returns the root JSON logger of a binary.
func NewLogger(service, version string, production bool) zerolog.Logger {
	level := zerolog.DebugLevel
	if production {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}

// Routing is the routing provider stack: the provider behind its cache and
// the adapter the resolver calls.
type Routing struct {
	Adapter *distance.ProviderAdapter
	// Redis is set when REDIS_ADDR is configured.
	Redis *redis.Client
}

// Close releases the Redis connection, if any.
func (r *Routing) Close() error {
	if r.Redis == nil {
		return nil
	}
	return r.Redis.Close()
}

// NewRouting builds the provider selected by ROUTING_PROVIDER. With "none" the
// adapter has no provider and every coordinate quote is a terrain estimate.
// A configured but unreachable Redis is logged and replaced by the in-process cache.
func NewRouting(ctx context.Context, cfg *config.Config, registry *resilience.Registry, logger zerolog.Logger) (*Routing, error) {
	out := &Routing{}

	var provider routing.Provider
	switch cfg.RoutingProvider {
	case config.ProviderGoogle:
		client, err := googlemaps.NewClient(googlemaps.ClientConfig{
			APIKey:   cfg.GoogleMapsAPIKey,
			Timeout:  cfg.RoutingTimeout,
			Registry: registry,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("google maps provider: %w", err)
		}
		provider = client
	case config.ProviderORS:
		provider = openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   cfg.ORSAPIKey,
			Timeout:  cfg.RoutingTimeout,
			Registry: registry,
			Logger:   logger,
		})
	default:
		logger.Info().Msg("no routing provider configured, using terrain estimates")
		out.Adapter = distance.NewProviderAdapter(distance.AdapterConfig{Logger: logger})
		return out, nil
	}

	if cfg.RoutingAPIKey() == "" {
		logger.Warn().Str("provider", provider.Name()).Msg("routing API key not set, quotes will fall back to terrain estimates")
	}

	metrics, err := routing.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("routing metrics: %w", err)
	}

	var cache routing.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using in-process routing cache")
			_ = client.Close()
		} else {
			out.Redis = client
			cache = rediscache.New(client, "")
			logger.Info().Str("addr", cfg.RedisAddr).Msg("routing cache on redis")
		}
	}

	cached := routing.NewCachedProvider(routing.CachedProviderConfig{
		Provider:     provider,
		Cache:        cache,
		Logger:       logger,
		CacheTTL:     cfg.RoutingCacheTTL,
		FetchTimeout: cfg.RoutingTimeout,
		Metrics:      metrics,
	})

	out.Adapter = distance.NewProviderAdapter(distance.AdapterConfig{
		Provider:   cached,
		Timeout:    cfg.RoutingTimeout,
		AvoidTolls: cfg.AvoidTolls,
		Logger:     logger,
	})
	logger.Info().
		Str("provider", provider.Name()).
		Dur("timeout", cfg.RoutingTimeout).
		Bool("avoid_tolls", cfg.AvoidTolls).
		Msg("routing provider configured")
	return out, nil
}
