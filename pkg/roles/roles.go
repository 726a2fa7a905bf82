// Package roles defines typed contracts for plugin roles.
// Plugins that fill a role (declared via PluginInfo.Roles) should implement
// the corresponding interface so callers can use type-safe access via
// PluginResolver.ResolveByRole followed by a type assertion.
//
// This package is Apache 2.0 licensed, part of the public plugin SDK.
package roles

import (
	"context"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// Role name constants match the strings used in PluginInfo.Roles.
const (
	RoleIngest       = "ingest"
	RoleAnalytics    = "analytics"
	RoleNotification = "notification"
)

// IngestProvider is implemented by plugins that accept raw metric samples
// from external collectors.
type IngestProvider interface {
	// Accept validates and queues a batch of samples for analysis.
	Accept(ctx context.Context, points []vitals.MetricDataPoint) error
}

// AnalyticsProvider is implemented by plugins that analyze metric series.
// Resolve via PluginResolver.ResolveByRole(RoleAnalytics) then type-assert.
type AnalyticsProvider interface {
	// Anomalies returns recently detected anomalies, newest first.
	Anomalies(ctx context.Context, limit int) ([]vitals.AnomalyResult, error)

	// Regressions returns recently detected regression alerts, newest first.
	Regressions(ctx context.Context, limit int) ([]vitals.RegressionAlert, error)

	// Trend returns the trend summary for one metric series, or nil when the
	// series has too few samples.
	Trend(ctx context.Context, metric, url string) (*vitals.TrendSummary, error)
}

// Notifier is implemented by plugins (and channel backends) that deliver
// alert notifications (webhooks, Slack, email, etc.).
type Notifier interface {
	// Notify sends an alert notification. eventType is "anomaly" or "regression".
	Notify(ctx context.Context, alert *vitals.RegressionAlert, eventType string) error

	// Type returns the notifier type identifier (e.g., "webhook", "slack").
	Type() string
}
