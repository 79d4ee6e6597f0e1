package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	brevo "github.com/sendinblue/APIv3-go-library/v2/lib"

	"github.com/tripfare/tripfare/internal/booking"
)

// BrevoName identifies the email notifier.
const BrevoName = "brevo"

// BrevoConfig holds configuration for the Brevo email notifier.
type BrevoConfig struct {
	APIKey string

	SenderName  string
	SenderEmail string

	// Recipient receives every booking announcement.
	Recipient string

	// BasePath overrides the API endpoint (optional).
	BasePath string

	Logger zerolog.Logger
}

// Brevo emails booking announcements through the Brevo transactional API.
type Brevo struct {
	client    *brevo.APIClient
	sender    brevo.SendSmtpEmailSender
	recipient string
	apiKey    string
	logger    zerolog.Logger
}

var bookingEmail = template.Must(template.New("booking").Parse(
	`<html><body><h2>{{.Subject}}</h2><pre style="font-family:inherit">{{.Body}}</pre></body></html>`))

// NewBrevo creates a Brevo notifier.
func NewBrevo(cfg BrevoConfig) *Brevo {
	apiCfg := brevo.NewConfiguration()
	apiCfg.AddDefaultHeader("api-key", cfg.APIKey)
	if cfg.BasePath != "" {
		apiCfg.BasePath = cfg.BasePath
	}

	name := cfg.SenderName
	if name == "" {
		name = "TripFare"
	}
	return &Brevo{
		client:    brevo.NewAPIClient(apiCfg),
		sender:    brevo.SendSmtpEmailSender{Name: name, Email: cfg.SenderEmail},
		recipient: cfg.Recipient,
		apiKey:    cfg.APIKey,
		logger:    cfg.Logger,
	}
}

// Name returns the notifier name.
func (b *Brevo) Name() string { return BrevoName }

// Configured reports whether an API key, sender and recipient are set.
func (b *Brevo) Configured() bool {
	return b != nil && b.apiKey != "" && b.sender.Email != "" && b.recipient != ""
}

// NotifyBooking emails the booking summary to the recipient.
func (b *Brevo) NotifyBooking(ctx context.Context, e booking.CreatedEvent) error {
	if !b.Configured() {
		return ErrNotConfigured
	}

	var body bytes.Buffer
	err := bookingEmail.Execute(&body, map[string]string{
		"Subject": Subject(e),
		"Body":    FormatBooking(e),
	})
	if err != nil {
		return fmt.Errorf("brevo: render email: %w", err)
	}

	sender := b.sender
	email := brevo.SendSmtpEmail{
		Sender:      &sender,
		To:          []brevo.SendSmtpEmailTo{{Email: b.recipient}},
		Subject:     Subject(e),
		HtmlContent: body.String(),
	}

	_, resp, err := b.client.TransactionalEmailsApi.SendTransacEmail(ctx, email)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return fmt.Errorf("brevo: send email (status %d): %w", status, err)
	}

	b.logger.Info().Str("booking_id", e.BookingID).Msg("booking email sent")
	return nil
}

var _ Notifier = (*Brevo)(nil)
