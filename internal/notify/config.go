package notify

import "github.com/vitalscope/vitalscope/pkg/vitals"

// Config holds configuration for the notify plugin.
type Config struct {
	// MinSeverity suppresses alerts below this severity ("info", "warning",
	// "critical").
	MinSeverity string `mapstructure:"min_severity"`

	// DeliveryHistoryLimit caps how many delivery records are kept.
	DeliveryHistoryLimit int `mapstructure:"delivery_history_limit"`
}

// DefaultConfig returns sensible defaults for the notify module.
func DefaultConfig() Config {
	return Config{
		MinSeverity:          vitals.SeverityWarning,
		DeliveryHistoryLimit: 1000,
	}
}

// severityRank orders severities for filtering. Unknown values rank lowest.
var severityRank = map[string]int{
	vitals.SeverityInfo:     0,
	vitals.SeverityWarning:  1,
	vitals.SeverityCritical: 2,
}

// meetsMinSeverity reports whether an alert severity passes the filter.
func (c Config) meetsMinSeverity(severity string) bool {
	min, ok := severityRank[c.MinSeverity]
	if !ok {
		return true
	}
	return severityRank[severity] >= min
}
