package storage

import "time"

// HistoryRecord represents a row in the action_history table
type HistoryRecord struct {
	ID         string    `db:"id"`
	Action     string    `db:"action"`
	Path       string    `db:"path"`
	StatusCode int       `db:"status_code"`
	Outcome    string    `db:"outcome"`
	Detail     string    `db:"detail"`
	DurationMS int64     `db:"duration_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS action_history (
	id TEXT PRIMARY KEY,
	action TEXT NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	status_code INTEGER NOT NULL DEFAULT 0,
	outcome TEXT NOT NULL CHECK(outcome IN ('ok', 'error', 'rejected')),
	detail TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_history_action ON action_history(action);
CREATE INDEX IF NOT EXISTS idx_history_created_at ON action_history(created_at);
`
