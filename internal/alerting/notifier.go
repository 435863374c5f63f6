package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification carries the context of a detected change point.
type Notification struct {
	Series     string
	Algorithm  string
	ChangeType string
	Position   decimal.Decimal
	Confidence decimal.Decimal
	BeforeMean decimal.Decimal
	AfterMean  decimal.Decimal
	DetectedAt time.Time
	Channels   []string
}

// Notifier delivers change-point notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// WebhookNotifier posts alerts as JSON to a configured endpoint.
type WebhookNotifier struct {
	url       string
	authToken string
	client    *http.Client
	logger    zerolog.Logger
}

// NewWebhookNotifier constructs a webhook alert channel.
func NewWebhookNotifier(url, authToken string, timeout time.Duration, logger zerolog.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookNotifier{
		url:       url,
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.With().Str("component", "alert_webhook").Logger(),
	}
}

type webhookPayload struct {
	Series     string `json:"series"`
	Algorithm  string `json:"algorithm"`
	ChangeType string `json:"change_type"`
	Position   string `json:"position"`
	Confidence string `json:"confidence"`
	BeforeMean string `json:"before_mean"`
	AfterMean  string `json:"after_mean"`
	DetectedAt string `json:"detected_at"`
	Text       string `json:"text"`
}

// Notify serialises the notification and posts it to the endpoint.
func (n *WebhookNotifier) Notify(ctx context.Context, note Notification) error {
	payload := webhookPayload{
		Series:     note.Series,
		Algorithm:  note.Algorithm,
		ChangeType: note.ChangeType,
		Position:   note.Position.String(),
		Confidence: note.Confidence.StringFixed(3),
		BeforeMean: note.BeforeMean.StringFixed(6),
		AfterMean:  note.AfterMean.StringFixed(6),
		DetectedAt: note.DetectedAt.UTC().Format(time.RFC3339),
		Text:       renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.authToken)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Info().
		Str("series", note.Series).
		Str("change_type", note.ChangeType).
		Str("position", note.Position.String()).
		Str("channels", strings.Join(note.Channels, ",")).
		Msg("alert delivered (webhook)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[shiftwatch alert]\n")
	builder.WriteString(fmt.Sprintf("Series: %s\n", note.Series))
	builder.WriteString(fmt.Sprintf("Change: %s at position %s\n", note.ChangeType, note.Position.String()))
	builder.WriteString(fmt.Sprintf("Confidence: %s\n", note.Confidence.StringFixed(3)))
	builder.WriteString(fmt.Sprintf("Mean: %s -> %s\n", note.BeforeMean.StringFixed(6), note.AfterMean.StringFixed(6)))
	builder.WriteString(fmt.Sprintf("Algorithm: %s\n", note.Algorithm))
	builder.WriteString(fmt.Sprintf("Detected: %s UTC\n", note.DetectedAt.UTC().Format(time.RFC3339)))
	if len(note.Channels) > 0 {
		builder.WriteString(fmt.Sprintf("Channels: %s\n", strings.Join(note.Channels, ",")))
	}
	return builder.String()
}

var _ Notifier = (*WebhookNotifier)(nil)
