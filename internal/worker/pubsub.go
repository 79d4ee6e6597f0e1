package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// MessageHandler processes a raw message body.
type MessageHandler interface {
	Handle(ctx context.Context, data []byte) error
}

// PubSubSource feeds Pub/Sub messages to a handler.
type PubSubSource struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	handler          MessageHandler
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub source.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Handler          MessageHandler
	Logger           zerolog.Logger
}

// NewPubSubSource creates a new Pub/Sub source.
func NewPubSubSource(ctx context.Context, cfg PubSubConfig) (*PubSubSource, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubSource{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		handler:          cfg.Handler,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is done.
func (s *PubSubSource) Start(ctx context.Context) error {
	s.logger.Info().
		Str("subscription", s.subscriptionName).
		Msg("starting pubsub source")

	return s.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := s.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		logger.Debug().Msg("received pubsub message")

		if ack := settle(logger, s.handler.Handle(ctx, msg.Data)); ack {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close closes the Pub/Sub client.
func (s *PubSubSource) Close() error {
	return s.client.Close()
}

// settle decides between ack and nack and logs the outcome.
func settle(logger zerolog.Logger, err error) bool {
	switch {
	case err == nil:
		logger.Debug().Msg("message handled")
		return true
	case errors.Is(err, ErrMalformedMessage):
		// Redelivery cannot fix a malformed message.
		logger.Error().Err(err).Msg("dropping malformed message")
		return true
	default:
		logger.Error().Err(err).Msg("message failed, requesting redelivery")
		return false
	}
}
