package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

func TestSlackNotifier_Notify(t *testing.T) {
	var received slackMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewSlackNotifier(SlackConfig{
		WebhookURL: srv.URL,
		Channel:    "#perf-alerts",
		Username:   "vitalscope",
	})

	alert := &vitals.RegressionAlert{
		ID:       "alert-1",
		Metric:   "LCP",
		URL:      "https://example.com/checkout",
		Severity: vitals.SeverityCritical,
		Message:  "LCP degraded by 80.0%",
	}

	if err := notifier.Notify(context.Background(), alert, EventTypeRegression); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.Channel != "#perf-alerts" {
		t.Errorf("channel = %q, want %q", received.Channel, "#perf-alerts")
	}
	if received.Username != "vitalscope" {
		t.Errorf("username = %q, want %q", received.Username, "vitalscope")
	}
	if !strings.Contains(received.Text, "LCP degraded by 80.0%") {
		t.Errorf("text = %q, want the alert message included", received.Text)
	}
	if !strings.Contains(received.Text, ":rotating_light:") {
		t.Errorf("text = %q, want critical emoji prefix", received.Text)
	}
	if !strings.Contains(received.Text, "https://example.com/checkout") {
		t.Errorf("text = %q, want URL context included", received.Text)
	}
}

func TestSlackNotifier_Notify_Non2xxError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	notifier := NewSlackNotifier(SlackConfig{WebhookURL: srv.URL})
	err := notifier.Notify(context.Background(), &vitals.RegressionAlert{ID: "a1"}, EventTypeAnomaly)
	if err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestSlackNotifier_Type(t *testing.T) {
	n := NewSlackNotifier(SlackConfig{WebhookURL: "http://example.com"})
	if n.Type() != "slack" {
		t.Errorf("Type() = %q, want %q", n.Type(), "slack")
	}
}

func TestFormatSlackText_SeverityEmoji(t *testing.T) {
	tests := []struct {
		severity string
		want     string
	}{
		{severity: vitals.SeverityInfo, want: ":information_source:"},
		{severity: vitals.SeverityWarning, want: ":warning:"},
		{severity: vitals.SeverityCritical, want: ":rotating_light:"},
	}

	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			alert := &vitals.RegressionAlert{Severity: tt.severity, Message: "m"}
			got := formatSlackText(alert, EventTypeRegression)
			if !strings.HasPrefix(got, tt.want) {
				t.Errorf("formatSlackText() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}
