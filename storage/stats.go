package storage

import (
	"fmt"
)

// DailyStats represents statistics for a single day
type DailyStats struct {
	Date         string `json:"date"`
	TotalPastes  int    `json:"total_pastes"`
	NewImages    int    `json:"new_images"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalPastes     int     `json:"total_pastes"`
	NewImages       int     `json:"new_images"`
	SuccessCount    int     `json:"success_count"`
	FailureCount    int     `json:"failure_count"`
	WSLPastes       int     `json:"wsl_pastes"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	TotalImageBytes int64   `json:"total_image_bytes"`
	ShortcutChanges int     `json:"shortcut_changes"`
	FilesCleaned    int     `json:"files_cleaned"`
}

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_pastes,
			COALESCE(SUM(CASE WHEN new_image = 1 THEN 1 ELSE 0 END), 0) as new_images,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count
		FROM pastes
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalPastes, &s.NewImages, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_pastes,
			COALESCE(SUM(CASE WHEN new_image = 1 THEN 1 ELSE 0 END), 0) as new_images,
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0) as success_count,
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) as failure_count,
			COALESCE(SUM(CASE WHEN path_style = 'wsl' THEN 1 ELSE 0 END), 0) as wsl_pastes,
			COALESCE(AVG(latency_ms), 0) as avg_latency_ms,
			COALESCE(SUM(CASE WHEN new_image = 1 THEN image_bytes ELSE 0 END), 0) as total_image_bytes
		FROM pastes
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalPastes,
		&stats.NewImages,
		&stats.SuccessCount,
		&stats.FailureCount,
		&stats.WSLPastes,
		&stats.AvgLatencyMs,
		&stats.TotalImageBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	err = db.conn.QueryRow(`
		SELECT COUNT(*) FROM shortcut_changes
		WHERE status = 'done' AND timestamp >= datetime('now', '-' || ? || ' days')
	`, days).Scan(&stats.ShortcutChanges)
	if err != nil {
		return nil, fmt.Errorf("failed to query shortcut stats: %w", err)
	}

	err = db.conn.QueryRow(`
		SELECT COALESCE(SUM(removed), 0) FROM cleanups
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`, days).Scan(&stats.FilesCleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleanup stats: %w", err)
	}

	return &stats, nil
}
