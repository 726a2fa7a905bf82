package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalscope/vitalscope/pkg/roles"
)

// NotificationChannel represents a configured notification delivery channel.
type NotificationChannel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`   // "webhook", "slack"
	Config    string    `json:"config"` // JSON blob
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WebhookConfig holds configuration for webhook notification delivery.
type WebhookConfig struct {
	URL     string            `json:"url"`
	Secret  string            `json:"secret,omitempty"` //nolint:gosec // G101: config field name, not a credential
	Headers map[string]string `json:"headers,omitempty"`
}

// SlackConfig holds configuration for Slack incoming-webhook delivery.
type SlackConfig struct {
	WebhookURL string `json:"webhook_url"`
	Channel    string `json:"channel,omitempty"`
	Username   string `json:"username,omitempty"`
}

// buildNotifier constructs the notifier for a channel from its config blob.
// Returns (nil, nil) for recognized but unimplemented channel types.
func buildNotifier(ch NotificationChannel) (roles.Notifier, error) {
	switch ch.Type {
	case "webhook":
		var cfg WebhookConfig
		if err := json.Unmarshal([]byte(ch.Config), &cfg); err != nil {
			return nil, fmt.Errorf("parse webhook config: %w", err)
		}
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook channel %s has no url", ch.ID)
		}
		return NewWebhookNotifier(cfg), nil
	case "slack":
		var cfg SlackConfig
		if err := json.Unmarshal([]byte(ch.Config), &cfg); err != nil {
			return nil, fmt.Errorf("parse slack config: %w", err)
		}
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("slack channel %s has no webhook_url", ch.ID)
		}
		return NewSlackNotifier(cfg), nil
	default:
		return nil, fmt.Errorf("unknown channel type %q", ch.Type)
	}
}
