package analyzer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vitalscope/vitalscope/internal/analyzer/series"
	"github.com/vitalscope/vitalscope/internal/analyzer/stats"
	"github.com/vitalscope/vitalscope/internal/analyzer/threshold"
	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// regressionZScoreGate is the fixed statistical-significance bar a window
// mean shift must clear before it is alerted. It is deliberately separate
// from (and more permissive than) Config.ZScoreThreshold: a whole-window
// shift needs less per-point evidence than a single-point outlier.
const regressionZScoreGate = 1.5

// trendEWMAAlpha is the smoothing factor for the EWMA series in trend
// summaries.
const trendEWMAAlpha = 0.3

// capMultiplier bounds each series at windowSize times this factor.
const capMultiplier = 10

// Detector turns raw samples into anomaly results, regression alerts, and
// trend summaries. All detection is pull-based and side-effect free: the
// methods only read the series store and return fresh result sets.
type Detector struct {
	cfg   Config
	store *series.Store
}

// NewDetector creates a detector with the given configuration. Non-positive
// detection parameters are clamped to defaults; the config is immutable
// afterwards.
func NewDetector(cfg Config) *Detector {
	cfg = cfg.withDefaults()
	return &Detector{
		cfg:   cfg,
		store: series.NewStore(cfg.WindowSize * capMultiplier),
	}
}

// Config returns the effective (clamped) configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// AddDataPoint records one sample. The caller must have rejected non-finite
// values already; the detector does not validate.
func (d *Detector) AddDataPoint(p vitals.MetricDataPoint) {
	d.store.Add(p)
}

// AddDataPoints records samples one by one.
func (d *Detector) AddDataPoints(points []vitals.MetricDataPoint) {
	d.store.AddBatch(points)
}

// Clear removes one series; Clear with an empty name removes all series.
func (d *Detector) Clear(name, url string) {
	if name == "" {
		d.store.ClearAll()
		return
	}
	d.store.Clear(series.Key{Name: name, URL: url})
}

// SeriesCount returns the number of tracked series.
func (d *Detector) SeriesCount() int {
	return d.store.SeriesCount()
}

// DataPointCount returns the number of stored points for one series.
func (d *Detector) DataPointCount(name, url string) int {
	return d.store.DataPointCount(series.Key{Name: name, URL: url})
}

// sortedSnapshot returns a timestamp-ordered copy of one series. The sort is
// stable so repeated calls over unchanged data yield identical results even
// with duplicate timestamps.
func (d *Detector) sortedSnapshot(k series.Key) []vitals.MetricDataPoint {
	pts := d.store.Snapshot(k)
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Timestamp.Before(pts[j].Timestamp)
	})
	return pts
}

// DetectAnomalies compares the latest sample of every eligible series
// against the window of points immediately preceding it. One result is
// returned per eligible series; IsAnomaly carries the verdict. Series with
// fewer than MinSamples points, or whose baseline window is shorter than
// MinSamples, are silently skipped.
func (d *Detector) DetectAnomalies() []vitals.AnomalyResult {
	var results []vitals.AnomalyResult

	for _, k := range d.store.Keys() {
		pts := d.sortedSnapshot(k)
		n := len(pts)
		if n < d.cfg.MinSamples {
			continue
		}

		latest := pts[n-1]
		start := n - 1 - d.cfg.WindowSize
		if start < 0 {
			start = 0
		}
		baseline := pts[start : n-1]
		if len(baseline) < d.cfg.MinSamples {
			continue
		}

		values := valuesOf(baseline)
		mean := stats.Mean(values)
		sd := stats.StdDev(values)
		z := stats.ZScore(latest.Value, mean, sd)

		direction := vitals.DirectionNone
		switch {
		case z > d.cfg.ZScoreThreshold:
			direction = vitals.DirectionUp
		case z < -d.cfg.ZScoreThreshold:
			direction = vitals.DirectionDown
		}

		results = append(results, vitals.AnomalyResult{
			Metric:    k.Name,
			URL:       k.URL,
			Value:     latest.Value,
			Timestamp: latest.Timestamp,
			ZScore:    z,
			IsAnomaly: math.Abs(z) > d.cfg.ZScoreThreshold,
			Direction: direction,
		})
	}

	return results
}

// DetectRegressions splits every eligible series into two adjacent windows
// and alerts when the current window's mean has degraded past both the
// percent threshold and the fixed z-score gate. Only degradations
// (increases) are alerted.
func (d *Detector) DetectRegressions() []vitals.RegressionAlert {
	var alerts []vitals.RegressionAlert

	for _, k := range d.store.Keys() {
		pts := d.sortedSnapshot(k)
		n := len(pts)
		if n < 2*d.cfg.MinSamples {
			continue
		}

		effective := d.cfg.WindowSize
		if half := n / 2; half < effective {
			effective = half
		}

		current := valuesOf(pts[n-effective:])
		previous := valuesOf(pts[n-2*effective : n-effective])
		if len(previous) < d.cfg.MinSamples {
			continue
		}

		prevMean := stats.Mean(previous)
		if prevMean == 0 {
			continue
		}
		curMean := stats.Mean(current)

		pct := (curMean - prevMean) / prevMean
		if pct < d.cfg.RegressionPercentThreshold {
			continue
		}

		z := stats.ZScore(curMean, prevMean, stats.StdDev(previous))
		if math.Abs(z) < regressionZScoreGate {
			continue
		}

		alerts = append(alerts, vitals.RegressionAlert{
			ID:               uuid.NewString(),
			Metric:           k.Name,
			URL:              k.URL,
			PreviousValue:    prevMean,
			CurrentValue:     curMean,
			AbsoluteChange:   curMean - prevMean,
			PercentageChange: pct,
			ZScore:           z,
			Severity:         d.regressionSeverity(k.Name, pct, curMean),
			DetectedAt:       time.Now().UTC(),
			WindowSize:       effective,
			Message: fmt.Sprintf("%s degraded by %.1f%%: mean %.2f -> %.2f over the last %d samples",
				k.String(), pct*100, prevMean, curMean, effective),
		})
	}

	return alerts
}

// regressionSeverity grades an alert by percent change first, falling back
// to the threshold classifier on the current mean for moderate shifts.
func (d *Detector) regressionSeverity(name string, pct, curMean float64) string {
	switch {
	case pct > 0.5:
		return vitals.SeverityCritical
	case pct > 0.3:
		return vitals.SeverityWarning
	default:
		return threshold.Severity(name, curMean, d.cfg.CustomThresholds)
	}
}

// AnalyzeTrend summarizes the directional trend of one series, or returns
// nil when it has fewer than MinSamples points. The baseline/recent means
// are simple non-overlapping slices off either end of the series, not the
// regression windows.
func (d *Detector) AnalyzeTrend(name, url string) *vitals.TrendSummary {
	pts := d.sortedSnapshot(series.Key{Name: name, URL: url})
	n := len(pts)
	if n < d.cfg.MinSamples {
		return nil
	}

	values := valuesOf(pts)
	trend := stats.LinearTrend(values)

	effective := d.cfg.WindowSize
	if half := n / 2; half < effective {
		effective = half
	}
	if effective < 1 {
		effective = 1
	}

	return &vitals.TrendSummary{
		Metric:       name,
		URL:          url,
		Direction:    vitals.TrendDirection(trend.Direction),
		Slope:        trend.Slope,
		EWMA:         stats.EWMA(values, trendEWMAAlpha),
		BaselineMean: stats.Mean(values[:effective]),
		RecentMean:   stats.Mean(values[n-effective:]),
		SampleCount:  n,
	}
}

// SeriesStats computes a full descriptive summary of one series' current
// snapshot, or nil for an empty series. Points carrying a precomputed
// rating keep it; others are rated against the threshold table.
func (d *Detector) SeriesStats(name, url string) *vitals.MetricStats {
	pts := d.store.Snapshot(series.Key{Name: name, URL: url})
	if len(pts) == 0 {
		return nil
	}
	return ComputeStats(name, url, pts, d.cfg.CustomThresholds)
}

// ComputeStats builds a MetricStats summary from an arbitrary point set.
func ComputeStats(name, url string, pts []vitals.MetricDataPoint, overrides map[string]threshold.Bounds) *vitals.MetricStats {
	values := valuesOf(pts)
	n := len(values)

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	ratingCount := map[vitals.Rating]int{
		vitals.RatingGood:             0,
		vitals.RatingNeedsImprovement: 0,
		vitals.RatingPoor:             0,
	}
	for i := range pts {
		r := pts[i].Rating
		if r == "" {
			r = threshold.Rate(pts[i].Name, pts[i].Value, overrides)
		}
		ratingCount[r]++
	}
	ratingPct := make(map[vitals.Rating]float64, len(ratingCount))
	for r, c := range ratingCount {
		ratingPct[r] = float64(c) / float64(n) * 100
	}

	return &vitals.MetricStats{
		Metric:      name,
		URL:         url,
		Count:       n,
		Mean:        stats.Mean(values),
		Median:      stats.Median(values),
		StdDev:      stats.StdDev(values),
		Variance:    stats.Variance(values),
		Min:         min,
		Max:         max,
		P50:         stats.Percentile(values, 50),
		P75:         stats.Percentile(values, 75),
		P90:         stats.Percentile(values, 90),
		P95:         stats.Percentile(values, 95),
		P99:         stats.Percentile(values, 99),
		RatingCount: ratingCount,
		RatingPct:   ratingPct,
	}
}

func valuesOf(pts []vitals.MetricDataPoint) []float64 {
	values := make([]float64, len(pts))
	for i := range pts {
		values[i] = pts[i].Value
	}
	return values
}
