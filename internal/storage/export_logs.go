package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExportLog records one flatten/export run's outcome.
type ExportLog struct {
	ID           uuid.UUID `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Sessions     int       `json:"sessions"`
	Exercises    int       `json:"exercises"`
	RowsEmitted  int       `json:"rows_emitted"`
	RowsInserted int64     `json:"rows_inserted"`
	DurationMs   *int      `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// InsertExportLog creates a new export log entry.
func (db *DB) InsertExportLog(ctx context.Context, log ExportLog) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO export_logs (id, source, status, sessions, exercises,
		 rows_emitted, rows_inserted, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		log.ID, log.Source, log.Status, log.Sessions, log.Exercises,
		log.RowsEmitted, log.RowsInserted, log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting export log: %w", err)
	}
	return nil
}

// ListExportLogs returns the most recent export runs, newest first.
func (db *DB) ListExportLogs(ctx context.Context, limit int) ([]ExportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, source, status, sessions, exercises,
		 rows_emitted, rows_inserted, duration_ms, error_message
		 FROM export_logs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying export logs: %w", err)
	}
	defer rows.Close()

	var result []ExportLog
	for rows.Next() {
		var l ExportLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Source, &l.Status, &l.Sessions,
			&l.Exercises, &l.RowsEmitted, &l.RowsInserted, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning export log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
