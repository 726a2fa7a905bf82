package ingest

import (
	"errors"
	"math"
	"net/url"
	"time"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

var (
	errEmptyName     = errors.New("metric name is required")
	errNonFinite     = errors.New("metric value must be finite")
	errNegativeValue = errors.New("metric value must not be negative")
)

// normalize validates one incoming sample and fills derivable fields:
// a zero timestamp becomes the receive time, and an empty pathname is
// derived from the URL when one is present.
func normalize(p *vitals.MetricDataPoint, now time.Time) error {
	if p.Name == "" {
		return errEmptyName
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return errNonFinite
	}
	if p.Value < 0 {
		return errNegativeValue
	}

	if p.Timestamp.IsZero() {
		p.Timestamp = now
	}
	if p.Pathname == "" && p.URL != "" {
		if u, err := url.Parse(p.URL); err == nil {
			p.Pathname = u.Path
		}
	}
	return nil
}
