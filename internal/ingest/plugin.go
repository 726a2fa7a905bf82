package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vitalscope/vitalscope/pkg/plugin"
	"github.com/vitalscope/vitalscope/pkg/roles"
	"github.com/vitalscope/vitalscope/pkg/vitals"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ roles.IngestProvider = (*Module)(nil)
)

// Prometheus intake metrics.
var (
	samplesAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_samples_accepted_total",
			Help: "Total number of samples accepted.",
		},
		[]string{"metric"},
	)
	samplesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_samples_rejected_total",
			Help: "Total number of samples rejected by validation.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(samplesAccepted)
	prometheus.MustRegister(samplesRejected)
}

// Module implements the ingest plugin: it accepts metric samples from
// browser collectors over HTTP, validates them, optionally persists them,
// and publishes them on the event bus for analysis.
type Module struct {
	logger *zap.Logger
	cfg    Config
	store  *SampleStore
	bus    plugin.EventBus

	accepted atomic.Int64
	rejected atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new ingest plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "ingest",
		Version:     "0.1.0",
		Description: "HTTP intake for web performance metric samples",
		Roles:       []string{roles.RoleIngest},
		Required:    true,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal ingest config: %w", err)
		}
	}
	m.cfg = m.cfg.withDefaults()

	if m.cfg.RequireAPIKey && len(m.cfg.APIKeyHashes) == 0 {
		return fmt.Errorf("ingest: require_api_key is set but no api_key_hashes are configured")
	}

	if deps.Store != nil && m.cfg.PersistSamples {
		if err := deps.Store.Migrate(context.Background(), "ingest", migrations()); err != nil {
			return fmt.Errorf("ingest migrations: %w", err)
		}
		m.store = NewSampleStore(deps.Store.DB())
	}

	m.bus = deps.Bus

	m.logger.Info("ingest module initialized",
		zap.Int("max_batch_size", m.cfg.MaxBatchSize),
		zap.Bool("require_api_key", m.cfg.RequireAPIKey),
		zap.Bool("persist_samples", m.cfg.PersistSamples),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	if m.store != nil {
		m.startMaintenance()
	}
	m.logger.Info("ingest module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("ingest module stopped")
	return nil
}

// -- plugin.HealthChecker --

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"samples_accepted": fmt.Sprintf("%d", m.accepted.Load()),
			"samples_rejected": fmt.Sprintf("%d", m.rejected.Load()),
		},
	}
}

// -- roles.IngestProvider --

// Accept validates a batch of samples and hands the valid ones to the
// analysis pipeline. Invalid samples are dropped individually; the batch is
// rejected as a whole only when every sample fails or the batch exceeds the
// size limit.
func (m *Module) Accept(ctx context.Context, points []vitals.MetricDataPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("empty batch")
	}
	if len(points) > m.cfg.MaxBatchSize {
		return fmt.Errorf("batch of %d exceeds limit of %d", len(points), m.cfg.MaxBatchSize)
	}

	now := time.Now().UTC()
	valid := make([]vitals.MetricDataPoint, 0, len(points))
	for i := range points {
		p := points[i]
		if err := normalize(&p, now); err != nil {
			m.rejected.Add(1)
			samplesRejected.WithLabelValues(err.Error()).Inc()
			m.logger.Debug("rejected sample",
				zap.String("metric", p.Name),
				zap.Float64("value", p.Value),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return fmt.Errorf("no valid samples in batch")
	}

	m.accepted.Add(int64(len(valid)))
	for i := range valid {
		samplesAccepted.WithLabelValues(valid[i].Name).Inc()
	}

	if m.store != nil {
		if err := m.store.InsertSamples(ctx, valid, now); err != nil {
			// Persistence is best effort; analysis must not stall on disk.
			m.logger.Warn("failed to persist samples", zap.Error(err))
		}
	}

	if m.bus != nil {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:   TopicSamplesReceived,
			Source:  "ingest",
			Payload: valid,
		})
	}
	return nil
}

// checkAPIKey verifies a collector key against the configured bcrypt hashes.
// Returns true when authentication is disabled.
func (m *Module) checkAPIKey(key string) bool {
	if !m.cfg.RequireAPIKey {
		return true
	}
	if key == "" {
		return false
	}
	for _, hash := range m.cfg.APIKeyHashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
			return true
		}
	}
	return false
}

// -- Maintenance --

// startMaintenance launches the retention purge loop for persisted samples.
func (m *Module) startMaintenance() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.MaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.runMaintenance()
			}
		}
	}()
}

// runMaintenance executes a single retention cycle.
func (m *Module) runMaintenance() {
	ctx, cancel := context.WithTimeout(m.ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-m.cfg.SampleRetention)
	deleted, err := m.store.DeleteOldSamples(ctx, cutoff)
	if err != nil {
		m.logger.Warn("failed to delete old samples", zap.Error(err))
	} else if deleted > 0 {
		m.logger.Info("purged old samples", zap.Int64("count", deleted))
	}
}
