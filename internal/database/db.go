package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with additional methods
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// Enable WAL mode for better concurrent access
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS store_status (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        store_id TEXT NOT NULL,
        timestamp_utc DATETIME NOT NULL,
        status TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_status_store ON store_status(store_id, timestamp_utc);
    CREATE INDEX IF NOT EXISTS idx_status_timestamp ON store_status(timestamp_utc);

    CREATE TABLE IF NOT EXISTS store_hours (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        store_id TEXT NOT NULL,
        day_of_week INTEGER NOT NULL, -- 0=Monday .. 6=Sunday
        start_time_local TEXT NOT NULL,
        end_time_local TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_hours_store ON store_hours(store_id, day_of_week);

    CREATE TABLE IF NOT EXISTS store_timezones (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        store_id TEXT NOT NULL,
        timezone_str TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_timezones_store ON store_timezones(store_id);

    CREATE TABLE IF NOT EXISTS reports (
        id TEXT PRIMARY KEY,
        status TEXT NOT NULL,
        csv_path TEXT,
        error TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
