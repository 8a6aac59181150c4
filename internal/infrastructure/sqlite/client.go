package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Open opens (or creates) the SQLite database at path and applies the schema.
// The path ":memory:" yields a private in-memory database.
func Open(path string, logger *zap.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("opened sqlite store", zap.String("path", path))
	return db, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version >= currentVersion {
		return nil
	}
	if version < 1 {
		if _, err := db.Exec(schemaV1); err != nil {
			return err
		}
	}
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// Timestamps are stored as fixed-width UTC text so that they sort lexically.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS tasks (
	id                TEXT PRIMARY KEY,
	creator           TEXT NOT NULL DEFAULT '',
	owners            TEXT NOT NULL,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	module            TEXT NOT NULL,
	category          TEXT NOT NULL DEFAULT 'other',
	tags              TEXT NOT NULL DEFAULT '[]',
	link              TEXT NOT NULL DEFAULT '',
	file_url          TEXT NOT NULL DEFAULT '',
	template_id       TEXT NOT NULL DEFAULT '',
	due_date          TEXT NOT NULL,
	priority          TEXT NOT NULL DEFAULT 'medium',
	status            TEXT NOT NULL DEFAULT 'todo',
	parent_id         TEXT REFERENCES tasks(id) ON DELETE SET NULL,
	estimated_minutes REAL NOT NULL DEFAULT 0,
	time_spent        REAL NOT NULL DEFAULT 0,
	pomodoro_count    INTEGER NOT NULL DEFAULT 0,
	reminders         TEXT NOT NULL DEFAULT '[]',
	comments          TEXT NOT NULL DEFAULT '[]',
	completed_at      TEXT,
	deleted_at        TEXT,
	last_viewed_at    TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_status_due     ON tasks(status, due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_priority       ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_creator_created ON tasks(creator, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_tasks_due_status     ON tasks(due_date, status);

CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner_updated ON notes(owner, updated_at DESC);

CREATE TABLE IF NOT EXISTS calendar_events (
	id         TEXT PRIMARY KEY,
	owner      TEXT NOT NULL,
	title      TEXT NOT NULL,
	event_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_calendar_events_owner_date ON calendar_events(owner, event_date);
`
