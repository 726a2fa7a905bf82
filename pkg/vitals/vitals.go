// Package vitals provides the public SDK types for the VitalScope analytics
// system: performance-metric samples and the results the analyzer produces.
// This package is Apache 2.0 licensed, part of the public plugin SDK.
package vitals

import "time"

// Rating is the three-level quality bucket assigned by the threshold classifier.
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// Severity levels for alerts.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Direction of an anomalous deviation relative to the baseline.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

// TrendDirection encodes the domain convention that a rising metric value
// (latency, CLS) means worse user experience.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDegrading TrendDirection = "degrading"
)

// MetricDataPoint is a single performance observation pushed by a browser
// collector. Immutable once created; arrival order is not guaranteed to
// follow Timestamp order.
type MetricDataPoint struct {
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url,omitempty"`
	Pathname  string    `json:"pathname,omitempty"`
	Rating    Rating    `json:"rating,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

// AnomalyResult is the verdict for the most recent sample of one series.
// Produced fresh on each detection sweep; not persisted unless anomalous.
type AnomalyResult struct {
	Metric    string    `json:"metric"`
	URL       string    `json:"url,omitempty"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	ZScore    float64   `json:"z_score"`
	IsAnomaly bool      `json:"is_anomaly"`
	Direction Direction `json:"direction"`
}

// RegressionAlert reports a statistically and practically significant
// degradation of a metric's typical value between two adjacent windows.
type RegressionAlert struct {
	ID               string    `json:"id"`
	Metric           string    `json:"metric"`
	URL              string    `json:"url,omitempty"`
	PreviousValue    float64   `json:"previous_value"`
	CurrentValue     float64   `json:"current_value"`
	AbsoluteChange   float64   `json:"absolute_change"`
	PercentageChange float64   `json:"percentage_change"`
	ZScore           float64   `json:"z_score"`
	Severity         string    `json:"severity"` // "info", "warning", "critical"
	DetectedAt       time.Time `json:"detected_at"`
	WindowSize       int       `json:"window_size"` // Actual window used, may be smaller than configured
	Message          string    `json:"message"`
}

// TrendSummary describes the directional trend of one series.
type TrendSummary struct {
	Metric       string         `json:"metric"`
	URL          string         `json:"url,omitempty"`
	Direction    TrendDirection `json:"direction"`
	Slope        float64        `json:"slope"`
	EWMA         []float64      `json:"ewma"`
	RecentMean   float64        `json:"recent_mean"`
	BaselineMean float64        `json:"baseline_mean"`
	SampleCount  int            `json:"sample_count"`
}

// MetricStats is a full descriptive summary of an arbitrary point set,
// computed on demand.
type MetricStats struct {
	Metric      string             `json:"metric"`
	URL         string             `json:"url,omitempty"`
	Count       int                `json:"count"`
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	StdDev      float64            `json:"std_dev"`
	Variance    float64            `json:"variance"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	P50         float64            `json:"p50"`
	P75         float64            `json:"p75"`
	P90         float64            `json:"p90"`
	P95         float64            `json:"p95"`
	P99         float64            `json:"p99"`
	RatingCount map[Rating]int     `json:"rating_count"`
	RatingPct   map[Rating]float64 `json:"rating_pct"`
}
