package events

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubjectPrefix prefixes every NATS subject.
const DefaultSubjectPrefix = "tripfare"

// NATSConfig holds configuration for the NATS publisher.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Logger        zerolog.Logger
}

// NATSPublisher publishes events on core NATS subjects named
// "<prefix>.<event type>".
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to cfg.URL.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	logger := cfg.Logger
	nc, err := Connect(cfg.URL, "tripfare-publisher", logger)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logger: logger}, nil
}

// Connect dials NATS with connection state logged through logger.
func Connect(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	return nats.Connect(url,
		nats.Name(name),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info().Msg("nats closed")
		}),
	)
}

// Publish sends e. Core NATS has no server acknowledgement, so a nil error
// only means the message was buffered.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := e.Encode()
	if err != nil {
		return err
	}
	subject := Subject(p.prefix, e.Type)
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Event-Id", e.ID)
	if err := p.nc.PublishMsg(msg); err != nil {
		return err
	}
	p.logger.Debug().Str("subject", subject).Str("event_id", e.ID).Msg("event published")
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// Subject builds the subject for an event type.
func Subject(prefix, eventType string) string {
	return prefix + "." + subjectToken(eventType)
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// Wildcards and whitespace are not allowed inside a token. Dots are kept
	// so "booking.created" maps to a two-token hierarchy.
	s = strings.NewReplacer(" ", "_", ">", "_", "*", "_", "/", "_", "\t", "_").Replace(s)
	s = strings.Trim(s, ".")
	if s == "" {
		s = "_"
	}
	return s
}

var _ Publisher = (*NATSPublisher)(nil)
