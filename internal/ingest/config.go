package ingest

import "time"

// Config holds configuration for the ingest plugin.
type Config struct {
	// MaxBatchSize caps the number of samples accepted in one batch request.
	MaxBatchSize int `mapstructure:"max_batch_size"`

	// RequireAPIKey rejects unauthenticated collector requests when true.
	// Keys are verified against APIKeyHashes (bcrypt).
	RequireAPIKey bool     `mapstructure:"require_api_key"`
	APIKeyHashes  []string `mapstructure:"api_key_hashes"`

	// PersistSamples writes accepted samples to the database for offline
	// inspection. The in-memory analysis path does not depend on it.
	PersistSamples bool `mapstructure:"persist_samples"`

	SampleRetention     time.Duration `mapstructure:"sample_retention"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

// DefaultConfig returns sensible defaults for the ingest module.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:        1000,
		RequireAPIKey:       false,
		PersistSamples:      true,
		SampleRetention:     7 * 24 * time.Hour,
		MaintenanceInterval: 1 * time.Hour,
	}
}

// withDefaults clamps non-positive values to their defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = def.MaxBatchSize
	}
	if c.SampleRetention <= 0 {
		c.SampleRetention = def.SampleRetention
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = def.MaintenanceInterval
	}
	return c
}
