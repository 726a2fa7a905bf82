package analyzer

import (
	"time"

	"github.com/vitalscope/vitalscope/internal/analyzer/threshold"
)

// Config holds configuration for the analyzer plugin. The detection fields
// (window size, thresholds, minimum samples) are fixed at construction; the
// sweep and retention fields drive the plugin's background loops.
type Config struct {
	WindowSize                 int     `mapstructure:"window_size"`
	ZScoreThreshold            float64 `mapstructure:"zscore_threshold"`
	MinSamples                 int     `mapstructure:"min_samples"`
	RegressionPercentThreshold float64 `mapstructure:"regression_percent_threshold"`

	// CustomThresholds overrides the built-in quality boundaries per metric.
	CustomThresholds map[string]threshold.Bounds `mapstructure:"custom_thresholds"`

	SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	AlertRetention      time.Duration `mapstructure:"alert_retention"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

// DefaultConfig returns sensible defaults for the analyzer module.
func DefaultConfig() Config {
	return Config{
		WindowSize:                 30,
		ZScoreThreshold:            2.5,
		MinSamples:                 10,
		RegressionPercentThreshold: 0.20,
		SweepInterval:              30 * time.Second,
		AlertRetention:             30 * 24 * time.Hour,
		MaintenanceInterval:        1 * time.Hour,
	}
}

// withDefaults clamps non-positive detection values to their defaults, the
// same way the rest of the analytics code treats bad tuning parameters:
// degrade to something sane instead of failing.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.WindowSize <= 0 {
		c.WindowSize = def.WindowSize
	}
	if c.ZScoreThreshold <= 0 {
		c.ZScoreThreshold = def.ZScoreThreshold
	}
	if c.MinSamples <= 0 {
		c.MinSamples = def.MinSamples
	}
	if c.RegressionPercentThreshold <= 0 {
		c.RegressionPercentThreshold = def.RegressionPercentThreshold
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.AlertRetention <= 0 {
		c.AlertRetention = def.AlertRetention
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = def.MaintenanceInterval
	}
	return c
}
