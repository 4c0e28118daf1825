package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymweek/internal/models"
	"github.com/jackc/pgx/v5"
)

// PutDay inserts a day schedule keyed by its canonical date. First write
// wins: a later submission describing the same date is silently ignored.
// Returns true if the row was inserted, false if the date already existed.
// Safe to call concurrently for distinct dates.
func (db *DB) PutDay(ctx context.Context, day models.DaySchedule) (bool, error) {
	sessions, err := json.Marshal(day.Sessions)
	if err != nil {
		return false, fmt.Errorf("encoding sessions: %w", err)
	}
	if day.Sessions == nil {
		// Rest day: store [] so it round-trips as an empty list, not null.
		sessions = []byte("[]")
	}

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO day_schedules (date, day_name, display_date, sessions)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (date) DO NOTHING`,
		day.Date, day.DayName, day.DisplayDate, sessions)
	if err != nil {
		return false, unavailable("inserting day schedule", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetDay retrieves the schedule for a canonical date. Returns (nil, nil)
// when no record exists for that date.
func (db *DB) GetDay(ctx context.Context, date time.Time) (*models.DaySchedule, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT date, day_name, display_date, sessions
		 FROM day_schedules WHERE date = $1`,
		date)

	day, err := scanDay(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, unavailable("querying day schedule", err)
	}
	return day, nil
}

// ListDays retrieves all stored day schedules ordered by date. Each call
// re-reads current state; this is not a snapshot iterator.
func (db *DB) ListDays(ctx context.Context, newestFirst bool) ([]models.DaySchedule, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT date, day_name, display_date, sessions
		 FROM day_schedules ORDER BY date `+order)
	if err != nil {
		return nil, unavailable("querying day schedules", err)
	}
	defer rows.Close()

	var result []models.DaySchedule
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, unavailable("scanning day schedule", err)
		}
		result = append(result, *day)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("reading day schedules", err)
	}
	return result, nil
}

// LatestDate returns the furthest date for which a schedule exists.
// Returns a zero time and false when the store is empty.
func (db *DB) LatestDate(ctx context.Context) (time.Time, bool, error) {
	var latest *time.Time
	err := db.Pool.QueryRow(ctx, `SELECT MAX(date) FROM day_schedules`).Scan(&latest)
	if err != nil {
		return time.Time{}, false, unavailable("querying latest date", err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}

func scanDay(row pgx.Row) (*models.DaySchedule, error) {
	var d models.DaySchedule
	var sessions []byte
	if err := row.Scan(&d.Date, &d.DayName, &d.DisplayDate, &sessions); err != nil {
		return nil, err
	}
	d.Date = d.Date.UTC()
	if err := json.Unmarshal(sessions, &d.Sessions); err != nil {
		return nil, fmt.Errorf("decoding sessions: %w", err)
	}
	if d.Sessions == nil {
		d.Sessions = []models.TrainingSession{}
	}
	return &d, nil
}
