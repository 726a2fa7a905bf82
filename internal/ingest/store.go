package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// SampleStore persists raw accepted samples for offline inspection.
type SampleStore struct {
	db *sql.DB
}

// NewSampleStore creates a SampleStore backed by the given database.
func NewSampleStore(db *sql.DB) *SampleStore {
	return &SampleStore{db: db}
}

// InsertSamples writes a batch of samples in one transaction.
func (s *SampleStore) InsertSamples(ctx context.Context, points []vitals.MetricDataPoint, receivedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sample insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ingest_samples (name, value, url, pathname, rating, session_id, timestamp, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i := range points {
		p := &points[i]
		if _, err := stmt.ExecContext(ctx,
			p.Name, p.Value, p.URL, p.Pathname, string(p.Rating), p.SessionID, p.Timestamp, receivedAt,
		); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	return tx.Commit()
}

// CountSamples returns the number of stored samples.
func (s *SampleStore) CountSamples(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ingest_samples`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return count, nil
}

// DeleteOldSamples deletes samples received before the given time.
// Returns the number of rows deleted.
func (s *SampleStore) DeleteOldSamples(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM ingest_samples WHERE received_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old samples: %w", err)
	}
	return result.RowsAffected()
}
