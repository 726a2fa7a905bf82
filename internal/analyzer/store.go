package analyzer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// AlertStore persists detection results for the analyzer plugin. Only
// anomalous results and regression alerts are written; routine sweep output
// stays in memory.
type AlertStore struct {
	db *sql.DB
}

// NewAlertStore creates an AlertStore backed by the given database.
func NewAlertStore(db *sql.DB) *AlertStore {
	return &AlertStore{db: db}
}

// -- Anomalies --

// InsertAnomaly stores one anomalous detection result under the given ID.
func (s *AlertStore) InsertAnomaly(ctx context.Context, id string, a *vitals.AnomalyResult, detectedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyzer_anomalies (
			id, metric, url, value, z_score, direction, sample_time, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.Metric, a.URL, a.Value, a.ZScore, string(a.Direction), a.Timestamp, detectedAt,
	)
	if err != nil {
		return fmt.Errorf("insert anomaly: %w", err)
	}
	return nil
}

// ListAnomalies returns stored anomalies, optionally filtered by metric name.
// Pass an empty metric to list all. Results are ordered by detected_at
// descending.
func (s *AlertStore) ListAnomalies(ctx context.Context, metric string, limit int) ([]vitals.AnomalyResult, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if metric == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT metric, url, value, z_score, direction, sample_time
			FROM analyzer_anomalies ORDER BY detected_at DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT metric, url, value, z_score, direction, sample_time
			FROM analyzer_anomalies WHERE metric = ? ORDER BY detected_at DESC LIMIT ?`,
			metric, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []vitals.AnomalyResult
	for rows.Next() {
		var a vitals.AnomalyResult
		var direction string
		if err := rows.Scan(&a.Metric, &a.URL, &a.Value, &a.ZScore, &direction, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("scan anomaly row: %w", err)
		}
		a.Direction = vitals.Direction(direction)
		a.IsAnomaly = true
		anomalies = append(anomalies, a)
	}
	return anomalies, rows.Err()
}

// DeleteOldAnomalies deletes anomalies detected before the given time.
// Returns the number of rows deleted.
func (s *AlertStore) DeleteOldAnomalies(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analyzer_anomalies WHERE detected_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old anomalies: %w", err)
	}
	return result.RowsAffected()
}

// -- Regressions --

// InsertRegression stores one regression alert.
func (s *AlertStore) InsertRegression(ctx context.Context, a *vitals.RegressionAlert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyzer_regressions (
			id, metric, url, previous_value, current_value, absolute_change,
			percentage_change, z_score, severity, window_size, message, detected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Metric, a.URL, a.PreviousValue, a.CurrentValue, a.AbsoluteChange,
		a.PercentageChange, a.ZScore, a.Severity, a.WindowSize, a.Message, a.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("insert regression: %w", err)
	}
	return nil
}

// ListRegressions returns stored regression alerts, optionally filtered by
// metric name. Results are ordered by detected_at descending.
func (s *AlertStore) ListRegressions(ctx context.Context, metric string, limit int) ([]vitals.RegressionAlert, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if metric == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, metric, url, previous_value, current_value, absolute_change,
				percentage_change, z_score, severity, window_size, message, detected_at
			FROM analyzer_regressions ORDER BY detected_at DESC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, metric, url, previous_value, current_value, absolute_change,
				percentage_change, z_score, severity, window_size, message, detected_at
			FROM analyzer_regressions WHERE metric = ? ORDER BY detected_at DESC LIMIT ?`,
			metric, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list regressions: %w", err)
	}
	defer rows.Close()

	var alerts []vitals.RegressionAlert
	for rows.Next() {
		var a vitals.RegressionAlert
		if err := rows.Scan(
			&a.ID, &a.Metric, &a.URL, &a.PreviousValue, &a.CurrentValue, &a.AbsoluteChange,
			&a.PercentageChange, &a.ZScore, &a.Severity, &a.WindowSize, &a.Message, &a.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("scan regression row: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// DeleteOldRegressions deletes regression alerts detected before the given
// time. Returns the number of rows deleted.
func (s *AlertStore) DeleteOldRegressions(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM analyzer_regressions WHERE detected_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old regressions: %w", err)
	}
	return result.RowsAffected()
}
