package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/events"
	"github.com/tripfare/tripfare/internal/notify"
)

// Job types carried in {"job_type": ...} messages.
const (
	JobRoutingWarmup = "routing_warmup"
)

// ErrMalformedMessage marks a message that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// DispatcherConfig holds configuration for the Dispatcher.
type DispatcherConfig struct {
	Notifiers []notify.Notifier
	Warmup    *WarmupJob
	Metrics   *Metrics
	Logger    zerolog.Logger

	// Retries per notifier after the first attempt. Default: 2.
	Retries         uint64
	InitialInterval time.Duration
}

// Dispatcher routes raw bus messages to booking notifications or jobs.
type Dispatcher struct {
	notifiers       []notify.Notifier
	warmup          *WarmupJob
	metrics         *Metrics
	logger          zerolog.Logger
	retries         uint64
	initialInterval time.Duration

	// delivered remembers (event, notifier) pairs already sent so that a
	// redelivered message does not notify twice.
	mu        sync.Mutex
	delivered map[string]struct{}
	order     []string
}

const maxDelivered = 4096

// NewDispatcher creates a Dispatcher. Unconfigured notifiers are dropped.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	var notifiers []notify.Notifier
	for _, n := range cfg.Notifiers {
		if n != nil && n.Configured() {
			notifiers = append(notifiers, n)
			continue
		}
		if n != nil {
			cfg.Logger.Info().Str("notifier", n.Name()).Msg("notifier not configured, skipping")
		}
	}
	retries := cfg.Retries
	if retries == 0 {
		retries = 2
	}
	interval := cfg.InitialInterval
	if interval == 0 {
		interval = 500 * time.Millisecond
	}
	return &Dispatcher{
		notifiers:       notifiers,
		warmup:          cfg.Warmup,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		retries:         retries,
		initialInterval: interval,
		delivered:       make(map[string]struct{}),
	}
}

// Notifiers returns the names of the active notifiers.
func (d *Dispatcher) Notifiers() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

type jobMessage struct {
	JobType string `json:"job_type"`
}

// Handle processes one message. A nil error means the message should be
// acknowledged; ErrMalformedMessage should be acknowledged too, since
// redelivery cannot fix it. Any other error asks for redelivery.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) error {
	start := time.Now()

	var job jobMessage
	if err := json.Unmarshal(data, &job); err != nil {
		d.metrics.message("unknown", "malformed", time.Since(start))
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if job.JobType != "" {
		err := d.handleJob(ctx, job.JobType)
		d.metrics.message(job.JobType, outcome(err), time.Since(start))
		return err
	}

	e, err := events.Decode(data)
	if err != nil {
		d.metrics.message("unknown", "malformed", time.Since(start))
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	switch e.Type {
	case events.TypeBookingCreated:
		err = d.handleBookingCreated(ctx, e)
	default:
		d.logger.Warn().Str("type", e.Type).Str("event_id", e.ID).Msg("unknown event type")
		d.metrics.message(e.Type, "ignored", time.Since(start))
		return nil
	}
	d.metrics.message(e.Type, outcome(err), time.Since(start))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMalformedMessage):
		return "malformed"
	default:
		return "failure"
	}
}

func (d *Dispatcher) handleJob(ctx context.Context, jobType string) error {
	switch jobType {
	case JobRoutingWarmup:
		if d.warmup == nil {
			d.logger.Warn().Msg("routing warm-up requested but no provider is configured")
			return nil
		}
		result := d.warmup.Run(ctx)
		// Consider it successful unless most pairs failed.
		if result.Failed > result.Successful {
			return fmt.Errorf("too many warm-up failures: %d/%d", result.Failed, result.TotalPairs)
		}
		return nil
	default:
		d.logger.Warn().Str("job_type", jobType).Msg("unknown job type")
		return nil
	}
}

func (d *Dispatcher) handleBookingCreated(ctx context.Context, e events.Event) error {
	var payload booking.CreatedEvent
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return fmt.Errorf("%w: booking payload: %w", ErrMalformedMessage, err)
	}
	if payload.BookingID == "" {
		return fmt.Errorf("%w: booking payload without id", ErrMalformedMessage)
	}

	logger := d.logger.With().Str("event_id", e.ID).Str("booking_id", payload.BookingID).Logger()

	var failed []error
	for _, n := range d.notifiers {
		key := e.ID + "/" + n.Name()
		if d.wasDelivered(key) {
			logger.Debug().Str("notifier", n.Name()).Msg("already delivered, skipping")
			continue
		}

		if err := d.deliver(ctx, n, payload); err != nil {
			logger.Error().Err(err).Str("notifier", n.Name()).Msg("notification failed")
			d.metrics.notification(n.Name(), "failure")
			failed = append(failed, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		d.markDelivered(key)
		d.metrics.notification(n.Name(), "success")
	}

	return errors.Join(failed...)
}

func (d *Dispatcher) deliver(ctx context.Context, n notify.Notifier, payload booking.CreatedEvent) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.initialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, d.retries), ctx)

	return backoff.Retry(func() error {
		err := n.NotifyBooking(ctx, payload)
		if errors.Is(err, notify.ErrNotConfigured) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func (d *Dispatcher) wasDelivered(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.delivered[key]
	return ok
}

func (d *Dispatcher) markDelivered(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.delivered[key]; ok {
		return
	}
	d.delivered[key] = struct{}{}
	d.order = append(d.order, key)
	if len(d.order) > maxDelivered {
		delete(d.delivered, d.order[0])
		d.order = d.order[1:]
	}
}
