package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitalscope/vitalscope/pkg/plugin"
	"github.com/vitalscope/vitalscope/pkg/roles"
	"github.com/vitalscope/vitalscope/pkg/vitals"
	"go.uber.org/zap"
)

// criticalAnomalyZScore is the |z| above which an anomaly notification is
// graded critical rather than warning.
const criticalAnomalyZScore = 4.0

// Compile-time interface guards.
var (
	_ plugin.Plugin          = (*Module)(nil)
	_ plugin.HTTPProvider    = (*Module)(nil)
	_ plugin.HealthChecker   = (*Module)(nil)
	_ plugin.EventSubscriber = (*Module)(nil)
)

// Prometheus delivery metrics.
var (
	deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Total number of notification delivery attempts.",
		},
		[]string{"channel_type", "status"},
	)
)

func init() {
	prometheus.MustRegister(deliveriesTotal)
}

// Module implements the notify plugin: it listens for detection events and
// fans alerts out to every enabled notification channel.
type Module struct {
	logger *zap.Logger
	cfg    Config
	store  *NotifyStore

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new notify plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:         "notify",
		Version:      "0.1.0",
		Description:  "Alert notification fan-out (webhooks, Slack)",
		Roles:        []string{roles.RoleNotification},
		Dependencies: []string{"analyzer"},
		Required:     false,
		APIVersion:   plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal notify config: %w", err)
		}
	}

	if deps.Store == nil {
		return fmt.Errorf("notify: store is required")
	}
	if err := deps.Store.Migrate(context.Background(), "notify", migrations()); err != nil {
		return fmt.Errorf("notify migrations: %w", err)
	}
	m.store = NewNotifyStore(deps.Store.DB())

	m.logger.Info("notify module initialized",
		zap.String("min_severity", m.cfg.MinSeverity),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.logger.Info("notify module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.logger.Info("notify module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(ctx context.Context) plugin.HealthStatus {
	channels, err := m.store.ListEnabledChannels(ctx)
	if err != nil {
		return plugin.HealthStatus{Status: "degraded", Message: "cannot read channels"}
	}
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"enabled_channels": fmt.Sprintf("%d", len(channels)),
		},
	}
}

// -- plugin.EventSubscriber --

// Subscriptions implements plugin.EventSubscriber.
func (m *Module) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{
		{Topic: TopicAnomalyDetected, Handler: m.handleAnomalyDetected},
		{Topic: TopicRegressionDetected, Handler: m.handleRegressionDetected},
	}
}

// handleAnomalyDetected converts an anomaly result into an alert and
// dispatches it.
func (m *Module) handleAnomalyDetected(ctx context.Context, event plugin.Event) {
	result, ok := event.Payload.(*vitals.AnomalyResult)
	if !ok {
		m.logger.Warn("unexpected payload type for anomaly event",
			zap.String("topic", event.Topic))
		return
	}
	m.dispatch(ctx, anomalyAlert(result), EventTypeAnomaly)
}

// handleRegressionDetected dispatches a regression alert.
func (m *Module) handleRegressionDetected(ctx context.Context, event plugin.Event) {
	alert, ok := event.Payload.(*vitals.RegressionAlert)
	if !ok {
		m.logger.Warn("unexpected payload type for regression event",
			zap.String("topic", event.Topic))
		return
	}
	m.dispatch(ctx, alert, EventTypeRegression)
}

// anomalyAlert shapes an anomaly result into the alert form notifiers
// consume.
func anomalyAlert(r *vitals.AnomalyResult) *vitals.RegressionAlert {
	severity := vitals.SeverityWarning
	if math.Abs(r.ZScore) >= criticalAnomalyZScore {
		severity = vitals.SeverityCritical
	}

	label := r.Metric
	if r.URL != "" {
		label = fmt.Sprintf("%s (%s)", r.Metric, r.URL)
	}
	return &vitals.RegressionAlert{
		ID:           uuid.NewString(),
		Metric:       r.Metric,
		URL:          r.URL,
		CurrentValue: r.Value,
		ZScore:       r.ZScore,
		Severity:     severity,
		DetectedAt:   time.Now().UTC(),
		Message: fmt.Sprintf("%s anomalous sample %.2f (z-score %.2f, %s)",
			label, r.Value, r.ZScore, r.Direction),
	}
}

// dispatch delivers one alert to every enabled channel and records the
// outcome of each attempt.
func (m *Module) dispatch(ctx context.Context, alert *vitals.RegressionAlert, eventType string) {
	if !m.cfg.meetsMinSeverity(alert.Severity) {
		return
	}

	channels, err := m.store.ListEnabledChannels(ctx)
	if err != nil {
		m.logger.Warn("failed to load notification channels", zap.Error(err))
		return
	}
	if len(channels) == 0 {
		return
	}

	for i := range channels {
		ch := channels[i]
		notifier, buildErr := buildNotifier(ch)
		if buildErr != nil {
			m.logger.Warn("failed to build notifier",
				zap.String("channel_id", ch.ID),
				zap.String("channel_type", ch.Type),
				zap.Error(buildErr),
			)
			continue
		}

		status := "delivered"
		errText := ""
		if notifyErr := notifier.Notify(ctx, alert, eventType); notifyErr != nil {
			status = "failed"
			errText = notifyErr.Error()
			m.logger.Warn("notification delivery failed",
				zap.String("channel_id", ch.ID),
				zap.String("channel_type", ch.Type),
				zap.String("alert_id", alert.ID),
				zap.Error(notifyErr),
			)
		} else {
			m.logger.Debug("notification delivered",
				zap.String("channel_id", ch.ID),
				zap.String("channel_type", ch.Type),
				zap.String("alert_id", alert.ID),
				zap.String("event_type", eventType),
			)
		}
		deliveriesTotal.WithLabelValues(ch.Type, status).Inc()

		record := &Delivery{
			ID:          uuid.NewString(),
			ChannelID:   ch.ID,
			ChannelType: ch.Type,
			AlertID:     alert.ID,
			EventType:   eventType,
			Status:      status,
			Error:       errText,
			CreatedAt:   time.Now().UTC(),
		}
		if err := m.store.InsertDelivery(ctx, record); err != nil {
			m.logger.Warn("failed to record delivery", zap.Error(err))
		}
	}

	if m.cfg.DeliveryHistoryLimit > 0 {
		if _, err := m.store.TrimDeliveries(ctx, m.cfg.DeliveryHistoryLimit); err != nil {
			m.logger.Warn("failed to trim delivery history", zap.Error(err))
		}
	}
}
