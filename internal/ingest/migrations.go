package ingest

import (
	"database/sql"

	"github.com/vitalscope/vitalscope/pkg/plugin"
)

// migrations returns the ingest module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create raw sample table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS ingest_samples (
						id          INTEGER PRIMARY KEY AUTOINCREMENT,
						name        TEXT NOT NULL,
						value       REAL NOT NULL,
						url         TEXT NOT NULL DEFAULT '',
						pathname    TEXT NOT NULL DEFAULT '',
						rating      TEXT NOT NULL DEFAULT '',
						session_id  TEXT NOT NULL DEFAULT '',
						timestamp   DATETIME NOT NULL,
						received_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_ingest_samples_name_time ON ingest_samples(name, timestamp)`,
					`CREATE INDEX IF NOT EXISTS idx_ingest_samples_received ON ingest_samples(received_at)`,
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
