package database

import (
	"database/sql"
	"fmt"
)

// initSessionsTable initializes the run sessions table.
func initSessionsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS sessions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        uuid TEXT NOT NULL UNIQUE,
        source_url TEXT NOT NULL,
        output_dir TEXT,
        preset TEXT,
        worker_limit INTEGER,
        status TEXT NOT NULL CHECK(status IN ('running', 'completed', 'cancelled', 'failed')),
        completed INTEGER DEFAULT 0,
        failed INTEGER DEFAULT 0,
        skipped INTEGER DEFAULT 0,
        started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        ended_at TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_sessions_uuid ON sessions(uuid);
    CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
    CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// initSessionItemsTable initializes the per-run item rows.
func initSessionItemsTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS session_items (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_uuid TEXT NOT NULL REFERENCES sessions(uuid),
        item_id TEXT NOT NULL,
        url TEXT NOT NULL,
        title TEXT,
        playlist_index INTEGER,
        status TEXT NOT NULL CHECK(status IN ('pending', 'skipped', 'queued', 'downloading', 'completed', 'failed')),
        progress REAL DEFAULT 0,
        error_message TEXT,
        output_path TEXT,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        UNIQUE(session_uuid, item_id)
    );
    CREATE INDEX IF NOT EXISTS idx_session_items_session ON session_items(session_uuid);
    CREATE INDEX IF NOT EXISTS idx_session_items_status ON session_items(status);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create session_items table: %w", err)
	}
	return nil
}
