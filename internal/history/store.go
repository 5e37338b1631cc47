// Package history provides persistent evaluation history using SQLite.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/ppiankov/entrawatch/internal/check"
)

// RunSummary is a compact representation of a historical run.
type RunSummary struct {
	At           time.Time `json:"at"`
	ID           int64     `json:"id"`
	ServiceCount int       `json:"serviceCount"`
	OKCount      int       `json:"okCount"`
	WarnCount    int       `json:"warnCount"`
	CritCount    int       `json:"critCount"`
	UnknownCount int       `json:"unknownCount"`
	ErrorCount   int       `json:"errorCount"`
}

// TrendPoint is a single data point of one service over time.
type TrendPoint struct {
	At    time.Time `json:"at"`
	State string    `json:"state"`
	Value float64   `json:"value"`
}

// Store persists evaluation runs and their outcomes to SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a snapshot and its outcomes to the database.
func (s *Store) Save(snap check.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // commit below; rollback is no-op after commit

	counts := snap.Counts()
	result, err := tx.Exec(
		"INSERT INTO runs (at, service_count, ok_count, warn_count, crit_count, unknown_count, error_count) VALUES (?, ?, ?, ?, ?, ?, ?)",
		snap.At, len(snap.Outcomes),
		counts[check.StateOK], counts[check.StateWarn], counts[check.StateCrit], counts[check.StateUnknown],
		len(snap.Errors),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting run id: %w", err)
	}

	stmt, err := tx.Prepare(
		"INSERT INTO outcomes (run_id, section, item, service, state, summary, details, metric_name, metric_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing outcome insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // statement lifetime bounded by tx

	for i := range snap.Outcomes {
		o := &snap.Outcomes[i]
		var metricName string
		var metricValue sql.NullFloat64
		if o.Outcome.Metric != nil {
			metricName = o.Outcome.Metric.Name
			metricValue = sql.NullFloat64{Float64: o.Outcome.Metric.Value, Valid: true}
		}
		_, err := stmt.Exec(runID, o.Section, o.Item, o.Service, o.Outcome.State.String(), o.Outcome.Summary, o.Outcome.Details, metricName, metricValue)
		if err != nil {
			return fmt.Errorf("inserting outcome: %w", err)
		}
	}

	return tx.Commit()
}

// List returns the most recent run summaries, ordered newest first.
func (s *Store) List(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(
		"SELECT id, at, service_count, ok_count, warn_count, crit_count, unknown_count, error_count FROM runs ORDER BY at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var summaries []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.At, &r.ServiceCount, &r.OKCount, &r.WarnCount, &r.CritCount, &r.UnknownCount, &r.ErrorCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}

// Trend returns state and metric data points of one service over time.
func (s *Store) Trend(service string, limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT r.at, o.state, COALESCE(o.metric_value, 0)
		FROM outcomes o
		JOIN runs r ON r.id = o.run_id
		WHERE o.service = ?
		ORDER BY r.at DESC
		LIMIT ?`,
		service, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying trend: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var points []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.At, &p.State, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning trend point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetLatest returns the most recent run with its outcomes, or nil if no
// runs exist. Per-section collection errors are not persisted; only the
// error count survives in the run summary.
func (s *Store) GetLatest() (*check.Snapshot, error) {
	var runID int64
	var at time.Time
	err := s.db.QueryRow("SELECT id, at FROM runs ORDER BY at DESC LIMIT 1").Scan(&runID, &at)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT section, item, service, state, summary, details, metric_name, metric_value FROM outcomes WHERE run_id = ?",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	snap := &check.Snapshot{At: at}
	for rows.Next() {
		var o check.ServiceOutcome
		var state, metricName string
		var metricValue sql.NullFloat64
		if err := rows.Scan(&o.Section, &o.Item, &o.Service, &state, &o.Outcome.Summary, &o.Outcome.Details, &metricName, &metricValue); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Outcome.State = check.ParseState(state)
		if metricName != "" && metricValue.Valid {
			o.Outcome.Metric = &check.Metric{Name: metricName, Value: metricValue.Float64}
		}
		snap.Outcomes = append(snap.Outcomes, o)
	}
	return snap, rows.Err()
}
