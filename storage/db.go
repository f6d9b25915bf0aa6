package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the history database in dir and initializes the schema
func Open(dir string) (*DB, error) {
	return OpenPath(filepath.Join(dir, "clippath.db"))
}

// OpenPath opens the database at path. ":memory:" is accepted.
func OpenPath(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The writer is the loop goroutine and the paste worker; one connection
	// keeps :memory: databases shared between them.
	conn.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pastes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		-- Image
		image_path TEXT NOT NULL,
		image_bytes INTEGER NOT NULL,
		new_image BOOLEAN NOT NULL,

		-- Output
		pasted_text TEXT NOT NULL,
		path_style TEXT NOT NULL,
		latency_ms INTEGER NOT NULL,

		-- Status
		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS shortcut_changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		previous TEXT NOT NULL,
		shortcut TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cleanups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		reason TEXT NOT NULL,
		removed INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pastes_timestamp ON pastes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_pastes_success ON pastes(success);
	CREATE INDEX IF NOT EXISTS idx_shortcut_changes_timestamp ON shortcut_changes(timestamp);
	`

	_, err := db.conn.Exec(schema)
	return err
}
