package history

import (
	"database/sql"
	"strings"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    at            DATETIME NOT NULL,
    service_count INTEGER NOT NULL DEFAULT 0,
    ok_count      INTEGER NOT NULL DEFAULT 0,
    warn_count    INTEGER NOT NULL DEFAULT 0,
    crit_count    INTEGER NOT NULL DEFAULT 0,
    unknown_count INTEGER NOT NULL DEFAULT 0,
    error_count   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS outcomes (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       INTEGER NOT NULL REFERENCES runs(id),
    section      TEXT NOT NULL DEFAULT '',
    item         TEXT NOT NULL DEFAULT '',
    service      TEXT NOT NULL DEFAULT '',
    state        TEXT NOT NULL DEFAULT '',
    summary      TEXT NOT NULL DEFAULT '',
    metric_name  TEXT NOT NULL DEFAULT '',
    metric_value REAL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_trend ON outcomes(section, service);
`

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	// v2: keep the rendered detail block for the web API (idempotent)
	for _, stmt := range []string{
		"ALTER TABLE outcomes ADD COLUMN details TEXT NOT NULL DEFAULT ''",
	} {
		if _, err := db.Exec(stmt); err != nil && !isDuplicateColumn(err) {
			return err
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	// SQLite returns "duplicate column name" when the column already exists.
	msg := err.Error()
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
