package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitalscope/vitalscope/pkg/roles"
	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// Compile-time interface guard.
var _ roles.Notifier = (*SlackNotifier)(nil)

// slackMessage is the incoming-webhook payload Slack expects.
type slackMessage struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

// SlackNotifier delivers notifications to a Slack incoming webhook.
type SlackNotifier struct {
	client *http.Client
	cfg    SlackConfig
}

// NewSlackNotifier creates a new Slack notifier with the given config.
func NewSlackNotifier(cfg SlackConfig) *SlackNotifier {
	return &SlackNotifier{
		client: &http.Client{Timeout: 10 * time.Second},
		cfg:    cfg,
	}
}

// Notify posts a formatted alert message to the configured Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, alert *vitals.RegressionAlert, eventType string) error {
	msg := slackMessage{
		Text:     formatSlackText(alert, eventType),
		Channel:  s.cfg.Channel,
		Username: s.cfg.Username,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack POST: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain body for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack POST: status %d", resp.StatusCode)
	}

	return nil
}

// Type returns the notifier type identifier.
func (s *SlackNotifier) Type() string {
	return "slack"
}

// formatSlackText renders an alert as a single Slack message line with a
// severity emoji prefix.
func formatSlackText(alert *vitals.RegressionAlert, eventType string) string {
	emoji := ":information_source:"
	switch alert.Severity {
	case vitals.SeverityWarning:
		emoji = ":warning:"
	case vitals.SeverityCritical:
		emoji = ":rotating_light:"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s %s*: %s", emoji, strings.ToUpper(alert.Severity), eventType, alert.Message)
	if alert.URL != "" {
		fmt.Fprintf(&b, " (%s)", alert.URL)
	}
	return b.String()
}
