package server

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.data_dir", "./data")
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.rate_limit_rps", 100)
	v.SetDefault("server.rate_limit_burst", 200)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/vitalscope.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_key_hash", "")
	v.SetDefault("auth.access_token_ttl", "15m")

	// Plugin defaults
	v.SetDefault("plugins.ingest.enabled", true)
	v.SetDefault("plugins.ingest.max_batch_size", 1000)
	v.SetDefault("plugins.ingest.require_api_key", false)
	v.SetDefault("plugins.ingest.persist_samples", true)
	v.SetDefault("plugins.ingest.sample_retention", "168h")
	v.SetDefault("plugins.ingest.maintenance_interval", "1h")
	v.SetDefault("plugins.analyzer.enabled", true)
	v.SetDefault("plugins.analyzer.window_size", 30)
	v.SetDefault("plugins.analyzer.zscore_threshold", 2.5)
	v.SetDefault("plugins.analyzer.min_samples", 10)
	v.SetDefault("plugins.analyzer.regression_percent_threshold", 0.20)
	v.SetDefault("plugins.analyzer.sweep_interval", "30s")
	v.SetDefault("plugins.analyzer.alert_retention", "720h")
	v.SetDefault("plugins.analyzer.maintenance_interval", "1h")
	v.SetDefault("plugins.notify.enabled", true)
	v.SetDefault("plugins.notify.min_severity", "warning")
	v.SetDefault("plugins.notify.delivery_history_limit", 1000)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("vitalscope")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vitalscope")
	}

	// Environment variable support: VS_SERVER_PORT=9090
	v.SetEnvPrefix("VS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
