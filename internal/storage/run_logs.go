package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunLog records the outcome of a single ingestion run.
type RunLog struct {
	ID             uuid.UUID `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	Status         string    `json:"status"`
	ProcessedCount int       `json:"processed_count"`
	SkipReason     string    `json:"skip_reason,omitempty"`
	Errors         []string  `json:"errors,omitempty"`
	SourceURLs     []string  `json:"source_urls,omitempty"`
	DurationMs     *int      `json:"duration_ms,omitempty"`
}

// InsertRunLog creates a run log entry, typically with status "running".
func (db *DB) InsertRunLog(ctx context.Context, log RunLog) error {
	errs, err := json.Marshal(log.Errors)
	if err != nil {
		return fmt.Errorf("encoding run errors: %w", err)
	}
	urls, err := json.Marshal(log.SourceURLs)
	if err != nil {
		return fmt.Errorf("encoding source urls: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO run_logs (id, started_at, status, processed_count, skip_reason, errors, source_urls, duration_ms)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		log.ID, log.StartedAt, log.Status, log.ProcessedCount, log.SkipReason, errs, urls, log.DurationMs)
	if err != nil {
		return unavailable("inserting run log", err)
	}
	return nil
}

// UpdateRunLog updates an existing run log entry (typically from "running"
// to a terminal "success", "skipped" or "error").
func (db *DB) UpdateRunLog(ctx context.Context, log RunLog) error {
	errs, err := json.Marshal(log.Errors)
	if err != nil {
		return fmt.Errorf("encoding run errors: %w", err)
	}
	urls, err := json.Marshal(log.SourceURLs)
	if err != nil {
		return fmt.Errorf("encoding source urls: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`UPDATE run_logs SET
		 status = $2, processed_count = $3, skip_reason = $4,
		 errors = $5, source_urls = $6, duration_ms = $7
		 WHERE id = $1`,
		log.ID, log.Status, log.ProcessedCount, log.SkipReason, errs, urls, log.DurationMs)
	if err != nil {
		return unavailable(fmt.Sprintf("updating run log %s", log.ID), err)
	}
	return nil
}

// QueryRunLogs returns the most recent run logs.
func (db *DB) QueryRunLogs(ctx context.Context, limit int) ([]RunLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, started_at, status, processed_count, skip_reason, errors, source_urls, duration_ms
		 FROM run_logs
		 ORDER BY started_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, unavailable("querying run logs", err)
	}
	defer rows.Close()

	var result []RunLog
	for rows.Next() {
		var l RunLog
		var errs, urls []byte
		if err := rows.Scan(&l.ID, &l.StartedAt, &l.Status, &l.ProcessedCount,
			&l.SkipReason, &errs, &urls, &l.DurationMs); err != nil {
			return nil, unavailable("scanning run log", err)
		}
		if err := json.Unmarshal(errs, &l.Errors); err != nil {
			return nil, fmt.Errorf("decoding run errors: %w", err)
		}
		if err := json.Unmarshal(urls, &l.SourceURLs); err != nil {
			return nil, fmt.Errorf("decoding source urls: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// PruneRunLogs deletes run logs older than the retention window.
func (db *DB) PruneRunLogs(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM run_logs WHERE started_at < $1`, olderThan)
	if err != nil {
		return 0, unavailable("pruning run logs", err)
	}
	return tag.RowsAffected(), nil
}
