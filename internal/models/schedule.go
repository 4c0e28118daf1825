package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TrainingSession is one workout block within a day. All fields are
// free-form text as extracted from the source post; Type is not a closed
// enum and MainPartDuration keeps its unit suffix (e.g. "21 min").
type TrainingSession struct {
	Type             string   `json:"type"`
	Exercises        []string `json:"exercises"`
	TrainingMethod   string   `json:"training_method"`
	MainPartDuration string   `json:"main_part_duration"`
}

// DaySchedule is the training plan for one calendar day. Date is the
// canonical year-qualified key (UTC midnight). An empty Sessions slice is a
// valid stored state meaning "rest day" and is distinct from the absence of
// a record.
type DaySchedule struct {
	Date        time.Time         `json:"date"`
	DayName     string            `json:"day_name"`
	DisplayDate string            `json:"display_date"`
	Sessions    []TrainingSession `json:"sessions"`
}

// WeekSubmission is one ingestion batch: the days extracted from a single
// source post. WeekID is an opaque date-range label used only for
// deduplication, never for date math. The source may publish irregular
// weeks; 5 to 8 days are accepted.
type WeekSubmission struct {
	WeekID     string        `json:"week_id"`
	SourceURL  string        `json:"source_url"`
	IngestedAt time.Time     `json:"ingested_at"`
	Days       []DaySchedule `json:"days"`
}

// MinWeekDays and MaxWeekDays bound the accepted day count of a submission.
const (
	MinWeekDays = 5
	MaxWeekDays = 8
)

// PartialDate is a day-and-month pair without a year, as found in the
// source material. It needs a reference instant to become a canonical date.
type PartialDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
}

// ParsePartialDate parses "dd.mm", "dd/mm" or "dd-mm" into a PartialDate.
// Only range checks happen here; calendar validity (31.04 etc.) is the
// normalizer's job.
func ParsePartialDate(s string) (PartialDate, error) {
	s = strings.TrimSpace(s)
	var parts []string
	for _, sep := range []string{".", "/", "-"} {
		if strings.Contains(s, sep) {
			parts = strings.SplitN(s, sep, 2)
			break
		}
	}
	if len(parts) != 2 {
		return PartialDate{}, fmt.Errorf("partial date %q: expected dd.mm, dd/mm or dd-mm", s)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return PartialDate{}, fmt.Errorf("partial date %q: bad day: %w", s, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return PartialDate{}, fmt.Errorf("partial date %q: bad month: %w", s, err)
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return PartialDate{}, fmt.Errorf("partial date %q: day or month out of range", s)
	}
	return PartialDate{Day: day, Month: month}, nil
}

// String renders the partial date as "dd.mm".
func (p PartialDate) String() string {
	return fmt.Sprintf("%02d.%02d", p.Day, p.Month)
}
