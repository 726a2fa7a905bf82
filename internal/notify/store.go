package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Delivery records one notification delivery attempt.
type Delivery struct {
	ID          string    `json:"id"`
	ChannelID   string    `json:"channel_id"`
	ChannelType string    `json:"channel_type"`
	AlertID     string    `json:"alert_id"`
	EventType   string    `json:"event_type"`
	Status      string    `json:"status"` // "delivered", "failed"
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotifyStore provides database access for the notify plugin.
type NotifyStore struct {
	db *sql.DB
}

// NewNotifyStore creates a NotifyStore backed by the given database.
func NewNotifyStore(db *sql.DB) *NotifyStore {
	return &NotifyStore{db: db}
}

// -- Channels --

// UpsertChannel inserts or updates a notification channel.
func (s *NotifyStore) UpsertChannel(ctx context.Context, ch *NotificationChannel) error {
	enabled := 0
	if ch.Enabled {
		enabled = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notify_channels (id, name, type, config, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.Name, ch.Type, ch.Config, enabled, ch.CreatedAt, ch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert channel: %w", err)
	}
	return nil
}

// ListChannels returns all configured channels.
func (s *NotifyStore) ListChannels(ctx context.Context) ([]NotificationChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, config, enabled, created_at, updated_at
		FROM notify_channels ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	return scanChannels(rows)
}

// ListEnabledChannels returns only enabled channels.
func (s *NotifyStore) ListEnabledChannels(ctx context.Context) ([]NotificationChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, config, enabled, created_at, updated_at
		FROM notify_channels WHERE enabled = 1 ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list enabled channels: %w", err)
	}
	defer rows.Close()

	return scanChannels(rows)
}

func scanChannels(rows *sql.Rows) ([]NotificationChannel, error) {
	var channels []NotificationChannel
	for rows.Next() {
		var ch NotificationChannel
		var enabled int
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Type, &ch.Config, &enabled, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan channel row: %w", err)
		}
		ch.Enabled = enabled != 0
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// DeleteChannel removes a channel. Returns sql.ErrNoRows for unknown IDs.
func (s *NotifyStore) DeleteChannel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notify_channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// -- Deliveries --

// InsertDelivery records one delivery attempt.
func (s *NotifyStore) InsertDelivery(ctx context.Context, d *Delivery) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notify_deliveries (id, channel_id, channel_type, alert_id, event_type, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.ChannelID, d.ChannelType, d.AlertID, d.EventType, d.Status, d.Error, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// ListDeliveries returns recent delivery records, newest first.
func (s *NotifyStore) ListDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, channel_type, alert_id, event_type, status, error, created_at
		FROM notify_deliveries ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.ChannelID, &d.ChannelType, &d.AlertID, &d.EventType, &d.Status, &d.Error, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery row: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// TrimDeliveries keeps only the newest keep delivery records.
func (s *NotifyStore) TrimDeliveries(ctx context.Context, keep int) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM notify_deliveries WHERE id NOT IN (
			SELECT id FROM notify_deliveries ORDER BY created_at DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("trim deliveries: %w", err)
	}
	return result.RowsAffected()
}
