// Package threshold classifies raw metric values against the fixed Core Web
// Vitals quality boundaries. The table values are a compatibility contract
// with dashboards and alert formatting; do not adjust them casually.
package threshold

import "github.com/vitalscope/vitalscope/pkg/vitals"

// Bounds holds the (good, needs-improvement) boundaries for one metric.
// Values at or below Good rate "good"; at or below NeedsImprovement rate
// "needs-improvement"; anything above rates "poor".
type Bounds struct {
	Good             float64
	NeedsImprovement float64
}

// defaults is the fixed per-metric boundary table. Metric names are matched
// case-sensitively.
var defaults = map[string]Bounds{
	"LCP":           {Good: 2500, NeedsImprovement: 4000},
	"FID":           {Good: 100, NeedsImprovement: 300},
	"CLS":           {Good: 0.1, NeedsImprovement: 0.25},
	"INP":           {Good: 200, NeedsImprovement: 500},
	"TTFB":          {Good: 800, NeedsImprovement: 1800},
	"FCP":           {Good: 1800, NeedsImprovement: 3000},
	"long-task":     {Good: 50, NeedsImprovement: 100},
	"resource-load": {Good: 500, NeedsImprovement: 1500},
}

// genericBounds is the millisecond-based fallback for unknown metric names.
var genericBounds = Bounds{Good: 1000, NeedsImprovement: 3000}

// Lookup returns the boundaries for a metric, consulting the caller's
// override map first. The second return reports whether the metric was found
// in either table (as opposed to falling back to the generic rule).
func Lookup(name string, overrides map[string]Bounds) (Bounds, bool) {
	if overrides != nil {
		if b, ok := overrides[name]; ok {
			return b, true
		}
	}
	if b, ok := defaults[name]; ok {
		return b, true
	}
	return genericBounds, false
}

// Rate maps a (metric, value) pair to its three-level quality rating.
func Rate(name string, value float64, overrides map[string]Bounds) vitals.Rating {
	b, _ := Lookup(name, overrides)
	switch {
	case value <= b.Good:
		return vitals.RatingGood
	case value <= b.NeedsImprovement:
		return vitals.RatingNeedsImprovement
	default:
		return vitals.RatingPoor
	}
}

// Severity grades how far a value sits past the needs-improvement boundary.
// Unknown metrics always grade "info": without a known threshold there is no
// basis for escalation.
func Severity(name string, value float64, overrides map[string]Bounds) string {
	b, known := Lookup(name, overrides)
	if !known {
		return vitals.SeverityInfo
	}
	ratio := value / b.NeedsImprovement
	switch {
	case ratio > 1.5:
		return vitals.SeverityCritical
	case ratio > 1.0:
		return vitals.SeverityWarning
	default:
		return vitals.SeverityInfo
	}
}
