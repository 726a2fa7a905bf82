package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		point   vitals.MetricDataPoint
		wantErr error
	}{
		{
			name:  "valid sample",
			point: vitals.MetricDataPoint{Name: "LCP", Value: 2000},
		},
		{
			name:    "empty name",
			point:   vitals.MetricDataPoint{Value: 2000},
			wantErr: errEmptyName,
		},
		{
			name:    "NaN value",
			point:   vitals.MetricDataPoint{Name: "LCP", Value: math.NaN()},
			wantErr: errNonFinite,
		},
		{
			name:    "positive infinity",
			point:   vitals.MetricDataPoint{Name: "LCP", Value: math.Inf(1)},
			wantErr: errNonFinite,
		},
		{
			name:    "negative infinity",
			point:   vitals.MetricDataPoint{Name: "LCP", Value: math.Inf(-1)},
			wantErr: errNonFinite,
		},
		{
			name:    "negative value",
			point:   vitals.MetricDataPoint{Name: "LCP", Value: -1},
			wantErr: errNegativeValue,
		},
		{
			name:  "zero value is valid",
			point: vitals.MetricDataPoint{Name: "CLS", Value: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalize(&tt.point, now)
			if err != tt.wantErr {
				t.Errorf("normalize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize_DefaultsTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	p := vitals.MetricDataPoint{Name: "LCP", Value: 2000}
	if err := normalize(&p, now); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if !p.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want receive time %v", p.Timestamp, now)
	}

	// An explicit timestamp is kept.
	explicit := now.Add(-time.Minute)
	p = vitals.MetricDataPoint{Name: "LCP", Value: 2000, Timestamp: explicit}
	if err := normalize(&p, now); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if !p.Timestamp.Equal(explicit) {
		t.Errorf("Timestamp = %v, want explicit %v", p.Timestamp, explicit)
	}
}

func TestNormalize_DerivesPathname(t *testing.T) {
	now := time.Now()

	p := vitals.MetricDataPoint{Name: "LCP", Value: 2000, URL: "https://example.com/checkout?step=2"}
	if err := normalize(&p, now); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if p.Pathname != "/checkout" {
		t.Errorf("Pathname = %q, want %q", p.Pathname, "/checkout")
	}

	// An explicit pathname is kept.
	p = vitals.MetricDataPoint{Name: "LCP", Value: 2000, URL: "https://example.com/a", Pathname: "/custom"}
	if err := normalize(&p, now); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if p.Pathname != "/custom" {
		t.Errorf("Pathname = %q, want explicit %q", p.Pathname, "/custom")
	}
}
