package analyzer

import (
	"database/sql"

	"github.com/vitalscope/vitalscope/pkg/plugin"
)

// migrations returns the analyzer module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create analyzer alert tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS analyzer_anomalies (
						id           TEXT PRIMARY KEY,
						metric       TEXT NOT NULL,
						url          TEXT NOT NULL DEFAULT '',
						value        REAL NOT NULL,
						z_score      REAL NOT NULL,
						direction    TEXT NOT NULL DEFAULT 'none',
						sample_time  DATETIME NOT NULL,
						detected_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_anomalies_metric ON analyzer_anomalies(metric)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_anomalies_detected ON analyzer_anomalies(detected_at)`,

					`CREATE TABLE IF NOT EXISTS analyzer_regressions (
						id                TEXT PRIMARY KEY,
						metric            TEXT NOT NULL,
						url               TEXT NOT NULL DEFAULT '',
						previous_value    REAL NOT NULL,
						current_value     REAL NOT NULL,
						absolute_change   REAL NOT NULL,
						percentage_change REAL NOT NULL,
						z_score           REAL NOT NULL,
						severity          TEXT NOT NULL DEFAULT 'info',
						window_size       INTEGER NOT NULL DEFAULT 0,
						message           TEXT NOT NULL DEFAULT '',
						detected_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_regressions_metric ON analyzer_regressions(metric)`,
					`CREATE INDEX IF NOT EXISTS idx_analyzer_regressions_detected ON analyzer_regressions(detected_at)`,
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
