package storage

import (
	"context"
	"time"
)

// RecordSubmission marks a week identifier as processed. Idempotent.
func (db *DB) RecordSubmission(ctx context.Context, weekID, sourceURL string, ingestedAt time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO week_submissions (week_id, source_url, ingested_at)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (week_id) DO NOTHING`,
		weekID, sourceURL, ingestedAt)
	if err != nil {
		return unavailable("recording submission", err)
	}
	return nil
}

// SubmissionExists reports whether a week identifier was already processed.
// This is the deduplication guard; it operates at week granularity, not per
// day, so two submissions with different identifiers may still describe
// overlapping days (PutDay's first-write-wins covers that case).
func (db *DB) SubmissionExists(ctx context.Context, weekID string) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM week_submissions WHERE week_id = $1`,
		weekID).Scan(&count)
	if err != nil {
		return false, unavailable("checking submission", err)
	}
	return count > 0, nil
}
