package storage

import (
	"database/sql"
	"fmt"
	"time"

	"invoicedash/internal/dashboard"
	"invoicedash/internal/logger"
)

// Record asynchronously persists one action invocation. Implements
// dashboard.Recorder. Dropped silently when the store is degraded or the
// write queue is full; history must never slow an action down.
func (s *Store) Record(inv dashboard.Invocation) {
	if !s.healthStatus.Load() {
		return
	}

	select {
	case s.writeChan <- func(tx *sql.Tx) error {
		query := `INSERT INTO action_history (
			id, action, path, status_code, outcome, detail, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			inv.ID, inv.Action, inv.Path, inv.StatusCode,
			inv.Outcome, inv.Detail, inv.Duration.Milliseconds(), time.Now().UTC(),
		)
		return err
	}:
	default:
		logger.Warn("history write queue full, dropping invocation record")
	}
}

// QueryHistory returns the most recent invocation records, newest first.
// An empty action matches all actions. limit <= 0 means a default of 50.
func (s *Store) QueryHistory(action string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, action, path, status_code, outcome, detail, duration_ms, created_at
		FROM action_history`
	args := []any{}
	if action != "" {
		query += ` WHERE action = ?`
		args = append(args, action)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var r HistoryRecord
		if err := rows.Scan(&r.ID, &r.Action, &r.Path, &r.StatusCode,
			&r.Outcome, &r.Detail, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Flush blocks until queued writes have been applied, up to the timeout.
// Intended for tests and the CLI, not the serving path.
func (s *Store) Flush(timeout time.Duration) error {
	done := make(chan struct{})
	select {
	case s.writeChan <- func(*sql.Tx) error {
		close(done)
		return nil
	}:
	case <-time.After(timeout):
		return fmt.Errorf("flush: write queue full")
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("flush: writer did not drain in %s", timeout)
	}
}
