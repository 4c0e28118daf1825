// Package dates resolves the year-less day.month dates found in the source
// posts into canonical calendar dates.
package dates

import (
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymweek/internal/models"
)

// ErrInvalidDate marks a partial date that does not name a real calendar
// day (e.g. 31.04 or 30.02 outside leap years).
var ErrInvalidDate = errors.New("invalid date")

// Normalize converts a partial date into a canonical UTC-midnight date,
// taking the year from the reference instant. Near year boundaries the year
// is shifted: a December date seen in January belongs to the prior year, a
// January date seen in December to the next. Valid only because source data
// is always near-term relative to ingestion; not suitable for backfills.
func Normalize(pd models.PartialDate, ref time.Time) (time.Time, error) {
	if pd.Month < 1 || pd.Month > 12 || pd.Day < 1 || pd.Day > 31 {
		return time.Time{}, fmt.Errorf("%w: %02d.%02d out of range", ErrInvalidDate, pd.Day, pd.Month)
	}

	year := ref.Year()
	switch {
	case ref.Month() == time.January && pd.Month == 12:
		year--
	case ref.Month() == time.December && pd.Month == 1:
		year++
	}

	d := time.Date(year, time.Month(pd.Month), pd.Day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (April 31 -> May 1); reject instead of guess.
	if d.Day() != pd.Day || d.Month() != time.Month(pd.Month) {
		return time.Time{}, fmt.Errorf("%w: %02d.%02d does not exist in %d", ErrInvalidDate, pd.Day, pd.Month, year)
	}
	return d, nil
}
