package worker

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/events"
)

// NATSConfig holds configuration for the NATS source.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	// Queue spreads messages across worker replicas.
	Queue   string
	Handler MessageHandler
	Logger  zerolog.Logger
}

// NATSSource feeds core NATS messages to a handler. Core NATS does not
// redeliver, so failures are logged and counted only.
type NATSSource struct {
	nc      *nats.Conn
	subject string
	queue   string
	handler MessageHandler
	logger  zerolog.Logger
}

// NewNATSSource connects to NATS.
func NewNATSSource(cfg NATSConfig) (*NATSSource, error) {
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = events.DefaultSubjectPrefix
	}
	queue := cfg.Queue
	if queue == "" {
		queue = "tripfare-worker"
	}
	nc, err := events.Connect(cfg.URL, "tripfare-worker", cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &NATSSource{
		nc:      nc,
		subject: prefix + ".>",
		queue:   queue,
		handler: cfg.Handler,
		logger:  cfg.Logger,
	}, nil
}

// Start subscribes and blocks until ctx is done.
func (s *NATSSource) Start(ctx context.Context) error {
	sub, err := s.nc.QueueSubscribe(s.subject, s.queue, func(msg *nats.Msg) {
		logger := s.logger.With().Str("subject", msg.Subject).Logger()
		settle(logger, s.handler.Handle(ctx, msg.Data))
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("subject", s.subject).Str("queue", s.queue).Msg("starting nats source")

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		s.logger.Warn().Err(err).Msg("nats drain failed")
	}
	return nil
}

// Close drains the connection.
func (s *NATSSource) Close() error {
	return s.nc.Drain()
}
