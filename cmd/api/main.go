// Package main provides the entrypoint for the TripFare API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/api"
	"github.com/tripfare/tripfare/internal/api/handler"
	"github.com/tripfare/tripfare/internal/api/middleware"
	"github.com/tripfare/tripfare/internal/app"
	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/config"
	"github.com/tripfare/tripfare/internal/distance"
	"github.com/tripfare/tripfare/internal/events"
	"github.com/tripfare/tripfare/internal/fixedroute"
	"github.com/tripfare/tripfare/internal/notify"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/quote"
	"github.com/tripfare/tripfare/internal/routing/rediscache"
	"github.com/tripfare/tripfare/internal/settings"
	"github.com/tripfare/tripfare/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripfare-api"

	cfg, err := config.Load()
	if err != nil {
		fatal := zerolog.New(os.Stderr)
		fatal.Fatal().Err(err).Msg("invalid configuration")
	}

	log := app.NewLogger(serviceName, Version, cfg.IsProduction())
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting TripFare API")

	if err := run(cfg, serviceName, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, serviceName string, log zerolog.Logger) error {
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if cfg.OTelEnabled {
		log.Info().Str("otlp_endpoint", cfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		return err
	}
	quoteMetrics, err := quote.NewMetrics()
	if err != nil {
		return err
	}

	stores, err := app.OpenStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	defaults := settings.Defaults()
	defaults[settings.KeyActiveFareConfig].Value = cfg.ActiveFareConfig()
	settingsService := settings.NewService(settings.ServiceConfig{
		Repository: stores.Settings,
		Defaults:   defaults,
		Logger:     log,
	})

	registry := resilience.NewRegistry()
	routingStack, err := app.NewRouting(ctx, cfg, registry, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := routingStack.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}()

	engine := quote.NewEngine(quote.Config{
		Resolver: distance.NewResolver(distance.ResolverConfig{
			Adapter: routingStack.Adapter,
			Switch:  settingsService,
			Logger:  log,
		}),
		Matcher: fixedroute.NewMatcher(fixedroute.MatcherConfig{
			Routes: stores.FixedRoutes,
			Units:  stores.Units,
			Logger: log,
		}),
		Units:   stores.Units,
		Metrics: quoteMetrics,
		Logger:  log,
	})
	catalog := quote.NewCatalog(quote.CatalogConfig{
		Configs: stores.FareConfigs,
		Active:  settingsService,
		Logger:  log,
	})

	publisher, err := newPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	bookings := booking.NewService(booking.ServiceConfig{
		Repository: stores.Bookings,
		Quoter:     engine,
		Configs:    catalog,
		Publisher:  publisher,
		Logger:     log,
	})

	var checks []handler.Check
	if stores.Pool != nil {
		checks = append(checks, handler.Check{Name: "postgres", Pinger: stores.Pool})
	}
	if routingStack.Redis != nil {
		checks = append(checks, handler.Check{Name: "redis", Pinger: rediscache.New(routingStack.Redis, "")})
	}

	routerCfg := api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     httpMetrics,
		RequireTLS:  cfg.RequireTLS,
		Engine:      engine,
		Catalog:     catalog,
		Bookings:    bookings,
		Units:       stores.Units,
		FareConfigs: stores.FareConfigs,
		FixedRoutes: stores.FixedRoutes,
		Settings:    settingsService,
		Registry:    registry,
		Checks:      checks,
	}
	// The API only checks the bot token; delivery happens in the worker.
	if cfg.TelegramBotToken != "" {
		routerCfg.Telegram = notify.NewTelegram(notify.TelegramConfig{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   log,
		})
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newPublisher(ctx context.Context, cfg *config.Config, log zerolog.Logger) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsPubSub:
		log.Info().Str("topic", cfg.PubSubTopic).Msg("publishing events to pubsub")
		return events.NewPubSubPublisher(ctx, events.PubSubConfig{
			ProjectID: cfg.PubSubProjectID,
			Topic:     cfg.PubSubTopic,
			Logger:    log,
		})
	case config.EventsNATS:
		log.Info().Str("url", cfg.NATSURL).Msg("publishing events to nats")
		return events.NewNATSPublisher(events.NATSConfig{URL: cfg.NATSURL, Logger: log})
	default:
		log.Warn().Msg("no event backend configured, booking notifications are disabled")
		return events.NopPublisher{}, nil
	}
}
