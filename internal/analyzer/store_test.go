package analyzer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vitalscope/vitalscope/internal/store"
	"github.com/vitalscope/vitalscope/pkg/vitals"
)

func tempAlertStore(t *testing.T) *AlertStore {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background(), "analyzer", migrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewAlertStore(db.DB())
}

func TestAlertStore_Anomalies(t *testing.T) {
	s := tempAlertStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := &vitals.AnomalyResult{
		Metric:    "LCP",
		URL:       "https://example.com/checkout",
		Value:     5200,
		Timestamp: now.Add(-time.Minute),
		ZScore:    3.4,
		Direction: vitals.DirectionUp,
	}
	if err := s.InsertAnomaly(ctx, "anom-1", a, now); err != nil {
		t.Fatalf("InsertAnomaly: %v", err)
	}

	got, err := s.ListAnomalies(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListAnomalies: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Metric != "LCP" || got[0].Value != 5200 {
		t.Errorf("got %+v, want metric LCP value 5200", got[0])
	}
	if !got[0].IsAnomaly {
		t.Error("IsAnomaly = false, want true (stored rows are anomalous by definition)")
	}
	if got[0].Direction != vitals.DirectionUp {
		t.Errorf("Direction = %q, want %q", got[0].Direction, vitals.DirectionUp)
	}
}

func TestAlertStore_ListAnomalies_MetricFilter(t *testing.T) {
	s := tempAlertStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, metric := range []string{"LCP", "CLS", "LCP"} {
		a := &vitals.AnomalyResult{Metric: metric, Value: float64(i), Timestamp: now, ZScore: 3, Direction: vitals.DirectionUp}
		if err := s.InsertAnomaly(ctx, "anom-"+metric+string(rune('0'+i)), a, now); err != nil {
			t.Fatalf("InsertAnomaly: %v", err)
		}
	}

	got, err := s.ListAnomalies(ctx, "LCP", 10)
	if err != nil {
		t.Fatalf("ListAnomalies: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, a := range got {
		if a.Metric != "LCP" {
			t.Errorf("metric = %q, want LCP", a.Metric)
		}
	}
}

func TestAlertStore_DeleteOldAnomalies(t *testing.T) {
	s := tempAlertStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &vitals.AnomalyResult{Metric: "TTFB", Value: 900, Timestamp: now, ZScore: 2.7, Direction: vitals.DirectionUp}
	recent := &vitals.AnomalyResult{Metric: "TTFB", Value: 950, Timestamp: now, ZScore: 2.8, Direction: vitals.DirectionUp}

	if err := s.InsertAnomaly(ctx, "old", old, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("InsertAnomaly old: %v", err)
	}
	if err := s.InsertAnomaly(ctx, "recent", recent, now); err != nil {
		t.Fatalf("InsertAnomaly recent: %v", err)
	}

	deleted, err := s.DeleteOldAnomalies(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldAnomalies: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	got, err := s.ListAnomalies(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListAnomalies: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1 (only the recent anomaly should survive)", len(got))
	}
}

func TestAlertStore_Regressions(t *testing.T) {
	s := tempAlertStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	alert := &vitals.RegressionAlert{
		ID:               "reg-1",
		Metric:           "INP",
		URL:              "https://example.com/search",
		PreviousValue:    180,
		CurrentValue:     320,
		AbsoluteChange:   140,
		PercentageChange: 0.78,
		ZScore:           2.9,
		Severity:         vitals.SeverityCritical,
		DetectedAt:       now,
		WindowSize:       30,
		Message:          "INP (https://example.com/search) degraded by 77.8%: mean 180.00 -> 320.00 over the last 30 samples",
	}
	if err := s.InsertRegression(ctx, alert); err != nil {
		t.Fatalf("InsertRegression: %v", err)
	}

	got, err := s.ListRegressions(ctx, "INP", 10)
	if err != nil {
		t.Fatalf("ListRegressions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != "reg-1" {
		t.Errorf("ID = %q, want reg-1", got[0].ID)
	}
	if got[0].Severity != vitals.SeverityCritical {
		t.Errorf("Severity = %q, want %q", got[0].Severity, vitals.SeverityCritical)
	}
	if got[0].PercentageChange != 0.78 {
		t.Errorf("PercentageChange = %v, want 0.78", got[0].PercentageChange)
	}
}

func TestAlertStore_DeleteOldRegressions(t *testing.T) {
	s := tempAlertStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, age := range []time.Duration{-72 * time.Hour, -time.Hour} {
		alert := &vitals.RegressionAlert{
			ID:         "reg-" + string(rune('a'+i)),
			Metric:     "FCP",
			Severity:   vitals.SeverityWarning,
			DetectedAt: now.Add(age),
			WindowSize: 30,
		}
		if err := s.InsertRegression(ctx, alert); err != nil {
			t.Fatalf("InsertRegression: %v", err)
		}
	}

	deleted, err := s.DeleteOldRegressions(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOldRegressions: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}
