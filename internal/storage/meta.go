package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const lastUpdateKey = "last_update"

// MarkUpdated records the instant of the most recent successful ingestion.
func (db *DB) MarkUpdated(ctx context.Context, instant time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO meta (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		lastUpdateKey, instant.UTC().Format(time.RFC3339))
	if err != nil {
		return unavailable("marking updated", err)
	}
	return nil
}

// LastUpdate returns the instant of the most recent successful ingestion.
// The bool is false when no ingestion has ever completed.
func (db *DB) LastUpdate(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := db.Pool.QueryRow(ctx,
		`SELECT value FROM meta WHERE key = $1`, lastUpdateKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, unavailable("querying last update", err)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, unavailable("parsing last update", err)
	}
	return t, true, nil
}
