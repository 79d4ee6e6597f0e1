// Package main provides the entrypoint for the TripFare worker, which
// delivers booking notifications and runs routing warm-up jobs.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/app"
	"github.com/tripfare/tripfare/internal/config"
	"github.com/tripfare/tripfare/internal/notify"
	"github.com/tripfare/tripfare/internal/provider/resilience"
	"github.com/tripfare/tripfare/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// source delivers bus messages to the dispatcher until its context ends.
type source interface {
	Start(ctx context.Context) error
	Close() error
}

func main() {
	const serviceName = "tripfare-worker"

	cfg, err := config.Load()
	if err != nil {
		fatal := zerolog.New(os.Stderr)
		fatal.Fatal().Err(err).Msg("invalid configuration")
	}

	log := app.NewLogger(serviceName, Version, cfg.IsProduction())
	log.Info().Str("build_time", BuildTime).Msg("starting TripFare worker")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("worker stopped with error")
	}
	log.Info().Msg("worker stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := worker.NewMetrics()
	addr := cfg.MetricsAddr
	if addr == "" {
		// Worker also exposes health endpoint for Cloud Run
		addr = ":" + cfg.Port
	}
	metricsServer := metrics.Serve(addr, log)

	registry := resilience.NewRegistry()
	notifiers := []notify.Notifier{
		notify.NewTelegram(notify.TelegramConfig{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Registry: registry,
			Logger:   log,
		}),
		notify.NewBrevo(notify.BrevoConfig{
			APIKey:      cfg.BrevoAPIKey,
			SenderEmail: cfg.BrevoSenderEmail,
			Recipient:   cfg.NotifyEmail,
			Logger:      log,
		}),
	}

	var warmup *worker.WarmupJob
	routingStack, err := app.NewRouting(ctx, cfg, registry, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := routingStack.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}()
	if routingStack.Adapter.Configured() {
		warmup = worker.NewWarmupJob(worker.WarmupJobConfig{
			Config:  worker.DefaultWarmupConfig(),
			Querier: routingStack.Adapter,
			Metrics: metrics,
			Logger:  log,
		})
	}

	dispatcher := worker.NewDispatcher(worker.DispatcherConfig{
		Notifiers: notifiers,
		Warmup:    warmup,
		Metrics:   metrics,
		Logger:    log,
	})
	log.Info().Strs("notifiers", dispatcher.Notifiers()).Bool("warmup", warmup != nil).Msg("dispatcher ready")

	src, err := newSource(ctx, cfg, dispatcher, log)
	if err != nil {
		return err
	}

	srcErr := make(chan error, 1)
	if src != nil {
		defer func() {
			if err := src.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close message source")
			}
		}()
		go func() { srcErr <- src.Start(ctx) }()
	} else {
		log.Warn().Msg("no event backend configured, waiting for shutdown")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
	case err := <-srcErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server forced to shutdown")
	}
	return runErr
}

func newSource(ctx context.Context, cfg *config.Config, h worker.MessageHandler, log zerolog.Logger) (source, error) {
	switch cfg.EventsBackend {
	case config.EventsPubSub:
		return worker.NewPubSubSource(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			Handler:          h,
			Logger:           log,
		})
	case config.EventsNATS:
		return worker.NewNATSSource(worker.NATSConfig{
			URL:     cfg.NATSURL,
			Handler: h,
			Logger:  log,
		})
	default:
		return nil, nil
	}
}
