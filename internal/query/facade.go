// Package query is the read-only facade over the schedule store used by
// the API layer. It never mutates; absence of data is not an error.
package query

import (
	"context"
	"time"

	"github.com/claude/gymweek/internal/cache"
	"github.com/claude/gymweek/internal/dates"
	"github.com/claude/gymweek/internal/models"
)

// Store is the read surface the facade needs.
type Store interface {
	GetDay(ctx context.Context, date time.Time) (*models.DaySchedule, error)
	ListDays(ctx context.Context, newestFirst bool) ([]models.DaySchedule, error)
}

// Facade answers schedule lookups, caching results for the injected TTL.
type Facade struct {
	store     Store
	dayCache  *cache.Cache[*models.DaySchedule]
	listCache *cache.Cache[[]models.DaySchedule]
	now       func() time.Time
}

// New creates a Facade with the given cache TTL.
func New(store Store, ttl time.Duration) *Facade {
	return &Facade{
		store:     store,
		dayCache:  cache.New[*models.DaySchedule](ttl),
		listCache: cache.New[[]models.DaySchedule](ttl),
		now:       time.Now,
	}
}

// Today returns the schedule for the current date, or nil when none is
// stored.
func (f *Facade) Today(ctx context.Context) (*models.DaySchedule, error) {
	now := f.now()
	return f.byCanonicalDate(ctx, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))
}

// ByDate resolves a partial date against the current instant and returns
// the schedule for it, or nil when none is stored. A date string alone is
// ambiguous near year boundaries; the resolution rules live in the dates
// package.
func (f *Facade) ByDate(ctx context.Context, pd models.PartialDate) (*models.DaySchedule, error) {
	date, err := dates.Normalize(pd, f.now())
	if err != nil {
		return nil, err
	}
	return f.byCanonicalDate(ctx, date)
}

func (f *Facade) byCanonicalDate(ctx context.Context, date time.Time) (*models.DaySchedule, error) {
	key := date.Format("2006-01-02")
	if day, ok := f.dayCache.Get(key); ok {
		return day, nil
	}
	day, err := f.store.GetDay(ctx, date)
	if err != nil {
		return nil, err
	}
	// Absence (nil) is cached too: "no record" is a valid answer.
	f.dayCache.Set(key, day)
	return day, nil
}

// All returns every stored day schedule, newest first. An empty store
// yields an empty slice, not an error.
func (f *Facade) All(ctx context.Context) ([]models.DaySchedule, error) {
	if list, ok := f.listCache.Get("all"); ok {
		return list, nil
	}
	list, err := f.store.ListDays(ctx, true)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.DaySchedule{}
	}
	f.listCache.Set("all", list)
	return list, nil
}

// Invalidate drops all cached results. Called after a successful ingestion
// so fresh data is visible immediately.
func (f *Facade) Invalidate() {
	f.dayCache.Invalidate()
	f.listCache.Invalidate()
}
