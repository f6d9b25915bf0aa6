package storage

import (
	"fmt"
	"time"
)

// ShortcutChange records the end of a shortcut capture session.
type ShortcutChange struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Previous  string    `json:"previous"`
	Shortcut  string    `json:"shortcut"`
}

// SaveShortcutChange saves a finished capture session
func (db *DB) SaveShortcutChange(c *ShortcutChange) error {
	result, err := db.conn.Exec(
		`INSERT INTO shortcut_changes (source, status, previous, shortcut) VALUES (?, ?, ?, ?)`,
		c.Source, c.Status, c.Previous, c.Shortcut,
	)
	if err != nil {
		return fmt.Errorf("failed to save shortcut change: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	c.ID = id
	return nil
}

// GetShortcutChanges returns the most recent capture sessions, newest first
func (db *DB) GetShortcutChanges(limit int) ([]ShortcutChange, error) {
	rows, err := db.conn.Query(`
		SELECT id, timestamp, source, status, previous, shortcut
		FROM shortcut_changes
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortcut changes: %w", err)
	}
	defer rows.Close()

	var changes []ShortcutChange
	for rows.Next() {
		var c ShortcutChange
		if err := rows.Scan(&c.ID, &c.Timestamp, &c.Source, &c.Status, &c.Previous, &c.Shortcut); err != nil {
			return nil, fmt.Errorf("failed to scan shortcut change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// SaveCleanup records a cleanup run. reason is "manual" or the schedule
// name.
func (db *DB) SaveCleanup(reason string, removed int) error {
	if _, err := db.conn.Exec(`INSERT INTO cleanups (reason, removed) VALUES (?, ?)`, reason, removed); err != nil {
		return fmt.Errorf("failed to save cleanup: %w", err)
	}
	return nil
}
