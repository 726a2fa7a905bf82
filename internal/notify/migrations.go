package notify

import (
	"database/sql"

	"github.com/vitalscope/vitalscope/pkg/plugin"
)

// migrations returns the notify module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create notification channel and delivery tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS notify_channels (
						id         TEXT PRIMARY KEY,
						name       TEXT NOT NULL,
						type       TEXT NOT NULL,
						config     TEXT NOT NULL DEFAULT '{}',
						enabled    INTEGER NOT NULL DEFAULT 1,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,

					`CREATE TABLE IF NOT EXISTS notify_deliveries (
						id           TEXT PRIMARY KEY,
						channel_id   TEXT NOT NULL,
						channel_type TEXT NOT NULL,
						alert_id     TEXT NOT NULL,
						event_type   TEXT NOT NULL,
						status       TEXT NOT NULL,
						error        TEXT NOT NULL DEFAULT '',
						created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_notify_deliveries_created ON notify_deliveries(created_at)`,
					`CREATE INDEX IF NOT EXISTS idx_notify_deliveries_channel ON notify_deliveries(channel_id)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
