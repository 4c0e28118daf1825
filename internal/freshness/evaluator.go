// Package freshness decides whether a scrape run is warranted, based on how
// far ahead stored coverage reaches and how recently an ingestion succeeded.
package freshness

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// The publisher posts two-week batches roughly weekly. Skipping while
// coverage reaches 14+ days ahead and the last update is under 5 days old
// avoids redundant scrapes while bounding staleness. Policy constants, not
// derived.
const (
	coverageDaysThreshold  = 14
	updateAgeDaysThreshold = 5
)

// Store is the read surface the evaluator needs.
type Store interface {
	LatestDate(ctx context.Context) (time.Time, bool, error)
	LastUpdate(ctx context.Context) (time.Time, bool, error)
}

// Decision is the outcome of a freshness check.
type Decision struct {
	Skip      bool   `json:"skip"`
	Reason    string `json:"reason"`
	DaysAhead int    `json:"days_ahead"`
}

// Evaluator inspects the store to decide whether acquisition can be skipped.
type Evaluator struct {
	store Store
	log   *slog.Logger
}

// New creates an Evaluator.
func New(store Store, log *slog.Logger) *Evaluator {
	return &Evaluator{store: store, log: log}
}

// ShouldSkip reports whether acquisition is unnecessary right now. Storage
// read failures never cause a skip: redundant work is preferred over a
// missed update.
func (e *Evaluator) ShouldSkip(ctx context.Context, now time.Time) Decision {
	latest, haveData, err := e.store.LatestDate(ctx)
	if err != nil {
		e.log.Warn("freshness check: latest date unavailable", "error", err)
		return Decision{Skip: false, Reason: "storage unavailable, scraping to be safe"}
	}

	daysAhead := 0
	if haveData {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d := int(latest.Sub(today).Hours() / 24); d > 0 {
			daysAhead = d
		}
	}

	lastUpdate, haveUpdate, err := e.store.LastUpdate(ctx)
	if err != nil {
		e.log.Warn("freshness check: last update unavailable", "error", err)
		return Decision{Skip: false, Reason: "storage unavailable, scraping to be safe", DaysAhead: daysAhead}
	}

	daysSinceUpdate := updateAgeDaysThreshold // "never": large enough to force a scrape
	if haveUpdate {
		daysSinceUpdate = int(now.Sub(lastUpdate).Hours() / 24)
	}

	if daysAhead >= coverageDaysThreshold && daysSinceUpdate < updateAgeDaysThreshold {
		return Decision{
			Skip:      true,
			Reason:    fmt.Sprintf("coverage reaches %d days ahead, last update %d days ago", daysAhead, daysSinceUpdate),
			DaysAhead: daysAhead,
		}
	}
	return Decision{
		Skip:      false,
		Reason:    fmt.Sprintf("coverage %d days ahead, last update %d days ago", daysAhead, daysSinceUpdate),
		DaysAhead: daysAhead,
	}
}
