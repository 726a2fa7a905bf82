package analyzer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitalscope/vitalscope/pkg/plugin"
	"github.com/vitalscope/vitalscope/pkg/roles"
	"github.com/vitalscope/vitalscope/pkg/vitals"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin           = (*Module)(nil)
	_ plugin.HTTPProvider     = (*Module)(nil)
	_ plugin.HealthChecker    = (*Module)(nil)
	_ plugin.EventSubscriber  = (*Module)(nil)
	_ roles.AnalyticsProvider = (*Module)(nil)
)

// Module implements the analyzer plugin: it holds the in-memory series
// store, runs periodic detection sweeps, persists alerts, and publishes
// detection events for the notification layer.
type Module struct {
	logger   *zap.Logger
	cfg      Config
	detector *Detector
	store    *AlertStore
	bus      plugin.EventBus

	// sweepMu serializes detection sweeps; a slow sweep must not overlap
	// with the next tick or an on-demand detection request.
	sweepMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new analyzer plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "analyzer",
		Version:     "0.1.0",
		Description: "Statistical anomaly, regression, and trend detection for web vitals",
		Roles:       []string{roles.RoleAnalytics},
		Required:    true,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal analyzer config: %w", err)
		}
	}
	m.cfg = m.cfg.withDefaults()
	m.detector = NewDetector(m.cfg)

	if deps.Store != nil {
		if err := deps.Store.Migrate(context.Background(), "analyzer", migrations()); err != nil {
			return fmt.Errorf("analyzer migrations: %w", err)
		}
		m.store = NewAlertStore(deps.Store.DB())
	}

	m.bus = deps.Bus

	m.logger.Info("analyzer module initialized",
		zap.Int("window_size", m.cfg.WindowSize),
		zap.Float64("zscore_threshold", m.cfg.ZScoreThreshold),
		zap.Int("min_samples", m.cfg.MinSamples),
		zap.Float64("regression_percent_threshold", m.cfg.RegressionPercentThreshold),
		zap.Duration("sweep_interval", m.cfg.SweepInterval),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.startSweeper()
	m.startMaintenance()
	m.logger.Info("analyzer module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("analyzer module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	count := 0
	if m.detector != nil {
		count = m.detector.SeriesCount()
	}
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"series_tracked": fmt.Sprintf("%d", count),
		},
	}
}

// -- plugin.EventSubscriber --

// Subscriptions implements plugin.EventSubscriber.
func (m *Module) Subscriptions() []plugin.Subscription {
	return []plugin.Subscription{
		{Topic: TopicSamplesReceived, Handler: m.handleSamplesReceived},
	}
}

// handleSamplesReceived feeds ingested samples into the series store. The
// next sweep picks them up; detection does not run inline with ingestion.
func (m *Module) handleSamplesReceived(_ context.Context, event plugin.Event) {
	points, ok := event.Payload.([]vitals.MetricDataPoint)
	if !ok {
		m.logger.Debug("ignored samples event: unexpected payload type",
			zap.String("source", event.Source))
		return
	}
	m.detector.AddDataPoints(points)
	seriesTracked.Set(float64(m.detector.SeriesCount()))
}

// -- Detection sweep --

// startSweeper launches the periodic detection loop.
func (m *Module) startSweeper() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.runSweep()
			}
		}
	}()
}

// runSweep executes one full detection pass: anomalies first, then
// regressions. Anomalous results and all regression alerts are persisted
// and published.
func (m *Module) runSweep() {
	m.sweepMu.Lock()
	defer m.sweepMu.Unlock()

	start := time.Now()
	defer func() {
		sweepDuration.Observe(time.Since(start).Seconds())
	}()

	for _, a := range m.detector.DetectAnomalies() {
		if !a.IsAnomaly {
			continue
		}
		m.recordAnomaly(a)
	}

	for _, alert := range m.detector.DetectRegressions() {
		m.recordRegression(alert)
	}
}

// recordAnomaly persists one anomalous result and publishes it on the bus.
func (m *Module) recordAnomaly(a vitals.AnomalyResult) {
	anomaliesTotal.WithLabelValues(a.Metric, string(a.Direction)).Inc()

	m.logger.Info("anomaly detected",
		zap.String("metric", a.Metric),
		zap.String("url", a.URL),
		zap.Float64("value", a.Value),
		zap.Float64("z_score", a.ZScore),
		zap.String("direction", string(a.Direction)),
	)

	if m.store != nil {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		if err := m.store.InsertAnomaly(ctx, uuid.NewString(), &a, time.Now().UTC()); err != nil {
			m.logger.Warn("failed to store anomaly", zap.Error(err))
		}
	}

	if m.bus != nil {
		m.bus.PublishAsync(m.ctx, plugin.Event{
			Topic:   TopicAnomalyDetected,
			Source:  "analyzer",
			Payload: &a,
		})
	}
}

// recordRegression persists one regression alert and publishes it on the bus.
func (m *Module) recordRegression(alert vitals.RegressionAlert) {
	regressionsTotal.WithLabelValues(alert.Metric, alert.Severity).Inc()

	m.logger.Info("regression detected",
		zap.String("metric", alert.Metric),
		zap.String("url", alert.URL),
		zap.Float64("previous", alert.PreviousValue),
		zap.Float64("current", alert.CurrentValue),
		zap.Float64("percentage_change", alert.PercentageChange),
		zap.String("severity", alert.Severity),
	)

	if m.store != nil {
		ctx, cancel := context.WithTimeout(m.ctx, 5*time.Second)
		defer cancel()
		if err := m.store.InsertRegression(ctx, &alert); err != nil {
			m.logger.Warn("failed to store regression", zap.Error(err))
		}
	}

	if m.bus != nil {
		m.bus.PublishAsync(m.ctx, plugin.Event{
			Topic:   TopicRegressionDetected,
			Source:  "analyzer",
			Payload: &alert,
		})
	}
}

// -- roles.AnalyticsProvider --

// Anomalies implements roles.AnalyticsProvider.
func (m *Module) Anomalies(ctx context.Context, limit int) ([]vitals.AnomalyResult, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListAnomalies(ctx, "", limit)
}

// Regressions implements roles.AnalyticsProvider.
func (m *Module) Regressions(ctx context.Context, limit int) ([]vitals.RegressionAlert, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListRegressions(ctx, "", limit)
}

// Trend implements roles.AnalyticsProvider.
func (m *Module) Trend(_ context.Context, metric, url string) (*vitals.TrendSummary, error) {
	return m.detector.AnalyzeTrend(metric, url), nil
}
