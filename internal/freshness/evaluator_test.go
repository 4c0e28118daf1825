package freshness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	latest     time.Time
	haveLatest bool
	latestErr  error

	lastUpdate time.Time
	haveUpdate bool
	updateErr  error
}

func (f *fakeStore) LatestDate(context.Context) (time.Time, bool, error) {
	return f.latest, f.haveLatest, f.latestErr
}

func (f *fakeStore) LastUpdate(context.Context) (time.Time, bool, error) {
	return f.lastUpdate, f.haveUpdate, f.updateErr
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var now = time.Date(2024, time.October, 21, 9, 0, 0, 0, time.UTC)

func storeWith(daysAhead, daysSinceUpdate int) *fakeStore {
	return &fakeStore{
		latest:     time.Date(2024, time.October, 21+daysAhead, 0, 0, 0, 0, time.UTC),
		haveLatest: true,
		lastUpdate: now.Add(-time.Duration(daysSinceUpdate) * 24 * time.Hour),
		haveUpdate: true,
	}
}

// TestThresholdBoundaries pins the skip rule: skip iff coverage reaches at
// least 14 days ahead and the last update is strictly under 5 days old.
func TestThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name            string
		daysAhead       int
		daysSinceUpdate int
		wantSkip        bool
	}{
		{"coverage just short", 13, 1, false},
		{"both within thresholds", 14, 4, true},
		{"update too old", 14, 5, false},
		{"well covered and fresh", 20, 0, true},
		{"no coverage", 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(storeWith(tt.daysAhead, tt.daysSinceUpdate), discard())
			d := e.ShouldSkip(context.Background(), now)
			require.Equal(t, tt.wantSkip, d.Skip)
			require.Equal(t, tt.daysAhead, d.DaysAhead)
			require.NotEmpty(t, d.Reason)
		})
	}
}

// TestEmptyStore verifies an empty store always scrapes with daysAhead 0.
func TestEmptyStore(t *testing.T) {
	e := New(&fakeStore{}, discard())
	d := e.ShouldSkip(context.Background(), now)
	require.False(t, d.Skip)
	require.Equal(t, 0, d.DaysAhead)
}

// TestLatestInPast verifies daysAhead is floored at zero when all stored
// dates are behind today.
func TestLatestInPast(t *testing.T) {
	store := &fakeStore{
		latest:     now.AddDate(0, 0, -3),
		haveLatest: true,
		lastUpdate: now.Add(-time.Hour),
		haveUpdate: true,
	}
	e := New(store, discard())
	d := e.ShouldSkip(context.Background(), now)
	require.False(t, d.Skip)
	require.Equal(t, 0, d.DaysAhead)
}

// TestNeverUpdated verifies that good coverage without any recorded update
// still scrapes (the "never" sentinel fails the recency test).
func TestNeverUpdated(t *testing.T) {
	store := storeWith(20, 0)
	store.haveUpdate = false
	e := New(store, discard())
	d := e.ShouldSkip(context.Background(), now)
	require.False(t, d.Skip)
	require.Equal(t, 20, d.DaysAhead)
}

// TestStorageErrorNeverSkips verifies read failures default to scraping.
func TestStorageErrorNeverSkips(t *testing.T) {
	boom := errors.New("connection refused")

	e := New(&fakeStore{latestErr: boom}, discard())
	require.False(t, e.ShouldSkip(context.Background(), now).Skip)

	store := storeWith(20, 0)
	store.updateErr = boom
	e = New(store, discard())
	require.False(t, e.ShouldSkip(context.Background(), now).Skip)
}
