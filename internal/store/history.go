// Package store persists gate run summaries to SQLite so regressions can be
// traced across CI runs. Reconciled results stay in memory; only per-route
// counts and the offending keys are recorded.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tidgate/internal/gate"
	"tidgate/internal/testid"
)

const schema = `
CREATE TABLE IF NOT EXISTS gate_runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	pass        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS gate_run_routes (
	run_id        TEXT NOT NULL REFERENCES gate_runs(run_id),
	route         TEXT NOT NULL,
	present_count INTEGER NOT NULL,
	hidden_count  INTEGER NOT NULL,
	missing_count INTEGER NOT NULL,
	missing_keys  TEXT NOT NULL,
	hidden_keys   TEXT NOT NULL,
	remote_error  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_gate_run_routes_run ON gate_run_routes(run_id);
`

// RunRecord is a stored gate run summary.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Pass       bool
}

// History is the SQLite-backed gate run log.
type History struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the history database, applying the schema.
func Open(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &History{db: db}, nil
}

// RecordRun stores one decision with its per-route breakdown.
func (h *History) RecordRun(d *gate.Decision) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO gate_runs (run_id, started_at, finished_at, pass) VALUES (?, ?, ?, ?)`,
		d.RunID, d.StartedAt, d.FinishedAt, d.Pass,
	); err != nil {
		return fmt.Errorf("insert gate run: %w", err)
	}
	for _, r := range d.Routes {
		missingJSON, err := json.Marshal(r.Result.Missing())
		if err != nil {
			return err
		}
		hiddenJSON, err := json.Marshal(r.Result.Hidden())
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO gate_run_routes
			 (run_id, route, present_count, hidden_count, missing_count, missing_keys, hidden_keys, remote_error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.RunID, r.Route,
			len(r.Result.Present()), len(r.Result.Hidden()), len(r.Result.Missing()),
			string(missingJSON), string(hiddenJSON), r.Result.RemoteErr,
		); err != nil {
			return fmt.Errorf("insert gate run route: %w", err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns the newest runs first.
func (h *History) RecentRuns(limit int) ([]RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(
		`SELECT run_id, started_at, finished_at, pass
		 FROM gate_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.StartedAt, &rec.FinishedAt, &rec.Pass); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MissingKeysFor returns the recorded missing keys for one route of one run.
func (h *History) MissingKeysFor(runID, route string) ([]testid.Key, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var raw string
	err := h.db.QueryRow(
		`SELECT missing_keys FROM gate_run_routes WHERE run_id = ? AND route = ?`,
		runID, route,
	).Scan(&raw)
	if err != nil {
		return nil, err
	}
	var keys []testid.Key
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}
