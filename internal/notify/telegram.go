package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripfare/tripfare/internal/booking"
	"github.com/tripfare/tripfare/internal/provider/resilience"
)

const (
	// TelegramName identifies the Telegram notifier in logs and the registry.
	TelegramName = "telegram"

	// DefaultTelegramBaseURL is the Bot API endpoint.
	DefaultTelegramBaseURL = "https://api.telegram.org"

	defaultTelegramRetries = 3
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TelegramConfig holds configuration for the Telegram notifier.
type TelegramConfig struct {
	BotToken string
	ChatID   string

	// BaseURL overrides the Bot API endpoint (optional).
	BaseURL string

	// HTTPClient is optional; by default a resilient client retries
	// transient failures three times.
	HTTPClient HTTPDoer
	Timeout    time.Duration
	Registry   *resilience.Registry

	Logger zerolog.Logger
}

// Telegram posts booking announcements to a chat through a bot.
type Telegram struct {
	token      string
	chatID     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// BotInfo identifies the bot behind a token.
type BotInfo struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// TelegramError is a Bot API rejection.
type TelegramError struct {
	StatusCode  int
	Description string
}

func (e *TelegramError) Error() string {
	return fmt.Sprintf("telegram: %d %s", e.StatusCode, e.Description)
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(cfg TelegramConfig) *Telegram {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(TelegramName)
		clientCfg.MaxRetries = defaultTelegramRetries
		if cfg.Timeout > 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}
	return &Telegram{
		token:      cfg.BotToken,
		chatID:     cfg.ChatID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the notifier name.
func (t *Telegram) Name() string { return TelegramName }

// Configured reports whether both the token and the chat are set.
func (t *Telegram) Configured() bool {
	return t != nil && t.token != "" && t.chatID != ""
}

// TestConnection calls getMe and returns the bot identity.
func (t *Telegram) TestConnection(ctx context.Context) (*BotInfo, error) {
	if !t.Configured() {
		return nil, ErrNotConfigured
	}
	raw, err := t.call(ctx, http.MethodGet, "getMe", nil)
	if err != nil {
		return nil, err
	}
	var info BotInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("telegram: decode getMe: %w", err)
	}
	return &info, nil
}

// SendMessage posts text to the configured chat and returns the message ID.
func (t *Telegram) SendMessage(ctx context.Context, text string) (int64, error) {
	if !t.Configured() {
		return 0, ErrNotConfigured
	}
	raw, err := t.call(ctx, http.MethodPost, "sendMessage", map[string]any{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return 0, err
	}
	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, fmt.Errorf("telegram: decode sendMessage: %w", err)
	}
	return msg.MessageID, nil
}

// NotifyBooking sends the booking summary to the chat.
func (t *Telegram) NotifyBooking(ctx context.Context, e booking.CreatedEvent) error {
	id, err := t.SendMessage(ctx, FormatBooking(e))
	if err != nil {
		return err
	}
	t.logger.Info().Str("booking_id", e.BookingID).Int64("message_id", id).Msg("telegram notification sent")
	return nil
}

func (t *Telegram) call(ctx context.Context, method, endpoint string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("telegram: encode %s: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("telegram: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		// The URL carries the token; keep it out of the error.
		return nil, fmt.Errorf("telegram: %s request failed: %w", endpoint, unwrapURLError(err))
	}
	defer resp.Body.Close()

	var out telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TelegramError{StatusCode: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK || !out.OK {
		return nil, &TelegramError{StatusCode: resp.StatusCode, Description: out.Description}
	}
	return out.Result, nil
}

func unwrapURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

var _ Notifier = (*Telegram)(nil)
