package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Paste records one hotkey press that produced (or failed to produce) a path.
type Paste struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	ImagePath    string    `json:"image_path"`
	ImageBytes   int64     `json:"image_bytes"`
	NewImage     bool      `json:"new_image"`
	PastedText   string    `json:"pasted_text"`
	PathStyle    string    `json:"path_style"`
	LatencyMs    int64     `json:"latency_ms"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// SavePaste saves a paste to the database
func (db *DB) SavePaste(p *Paste) error {
	query := `
		INSERT INTO pastes (
			image_path, image_bytes, new_image, pasted_text, path_style,
			latency_ms, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		p.ImagePath, p.ImageBytes, p.NewImage, p.PastedText, p.PathStyle,
		p.LatencyMs, p.Success, p.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save paste: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	p.ID = id
	return nil
}

// GetPastes retrieves pastes, newest first, with pagination
func (db *DB) GetPastes(limit, offset int) ([]Paste, error) {
	query := `
		SELECT
			id, timestamp, image_path, image_bytes, new_image, pasted_text,
			path_style, latency_ms, success, error_message
		FROM pastes
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query pastes: %w", err)
	}
	defer rows.Close()

	var pastes []Paste
	for rows.Next() {
		var p Paste
		var errorMessage sql.NullString

		err := rows.Scan(
			&p.ID, &p.Timestamp, &p.ImagePath, &p.ImageBytes, &p.NewImage, &p.PastedText,
			&p.PathStyle, &p.LatencyMs, &p.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paste: %w", err)
		}

		if errorMessage.Valid {
			p.ErrorMessage = errorMessage.String
		}

		pastes = append(pastes, p)
	}

	return pastes, rows.Err()
}

// DeletePaste deletes a paste by ID
func (db *DB) DeletePaste(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM pastes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete paste: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("paste %d: %w", id, ErrNotFound)
	}

	return nil
}

// GetPasteCount returns the total number of pastes
func (db *DB) GetPasteCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM pastes").Scan(&count)
	return count, err
}
