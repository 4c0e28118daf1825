package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/gymweek/internal/dates"
	"github.com/claude/gymweek/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	days     map[string]models.DaySchedule
	getCalls int
	listErr  error
}

func (f *fakeStore) GetDay(_ context.Context, date time.Time) (*models.DaySchedule, error) {
	f.getCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if d, ok := f.days[date.Format("2006-01-02")]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeStore) ListDays(_ context.Context, newestFirst bool) ([]models.DaySchedule, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.DaySchedule
	for _, d := range f.days {
		out = append(out, d)
	}
	return out, nil
}

var testNow = time.Date(2024, time.October, 21, 9, 30, 0, 0, time.UTC)

func newFacade(store Store) *Facade {
	f := New(store, time.Minute)
	f.now = func() time.Time { return testNow }
	return f
}

// TestByDate verifies lookup through partial-date normalization.
func TestByDate(t *testing.T) {
	monday := models.DaySchedule{
		Date:        time.Date(2024, time.October, 20, 0, 0, 0, 0, time.UTC),
		DayName:     "ma",
		DisplayDate: "20.10",
		Sessions: []models.TrainingSession{
			{Type: "Kracht", Exercises: []string{"Squat"}, MainPartDuration: "21 min"},
		},
	}
	store := &fakeStore{days: map[string]models.DaySchedule{"2024-10-20": monday}}
	f := newFacade(store)

	got, err := f.ByDate(context.Background(), models.PartialDate{Day: 20, Month: 10})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "ma", got.DayName)
	require.Equal(t, monday.Sessions, got.Sessions)
}

// TestByDateInvalid verifies malformed partial dates are rejected, not
// guessed.
func TestByDateInvalid(t *testing.T) {
	f := newFacade(&fakeStore{days: map[string]models.DaySchedule{}})
	_, err := f.ByDate(context.Background(), models.PartialDate{Day: 31, Month: 4})
	require.ErrorIs(t, err, dates.ErrInvalidDate)
}

// TestRestDayVsAbsent verifies an empty-session day is returned as a real
// record while an unknown date yields nil.
func TestRestDayVsAbsent(t *testing.T) {
	rest := models.DaySchedule{
		Date:        time.Date(2024, time.October, 23, 0, 0, 0, 0, time.UTC),
		DayName:     "do",
		DisplayDate: "23.10",
		Sessions:    []models.TrainingSession{},
	}
	store := &fakeStore{days: map[string]models.DaySchedule{"2024-10-23": rest}}
	f := newFacade(store)

	got, err := f.ByDate(context.Background(), models.PartialDate{Day: 23, Month: 10})
	require.NoError(t, err)
	require.NotNil(t, got, "rest day must be a stored record")
	require.Empty(t, got.Sessions)

	absent, err := f.ByDate(context.Background(), models.PartialDate{Day: 24, Month: 10})
	require.NoError(t, err)
	require.Nil(t, absent, "unknown date must be absent")
}

// TestTodayUsesCurrentDate verifies Today looks up the reference instant's
// calendar date.
func TestTodayUsesCurrentDate(t *testing.T) {
	today := models.DaySchedule{
		Date:    time.Date(2024, time.October, 21, 0, 0, 0, 0, time.UTC),
		DayName: "di",
	}
	store := &fakeStore{days: map[string]models.DaySchedule{"2024-10-21": today}}
	f := newFacade(store)

	got, err := f.Today(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "di", got.DayName)
}

// TestCaching verifies repeated lookups hit the cache until Invalidate.
func TestCaching(t *testing.T) {
	store := &fakeStore{days: map[string]models.DaySchedule{}}
	f := newFacade(store)

	pd := models.PartialDate{Day: 20, Month: 10}
	_, err := f.ByDate(context.Background(), pd)
	require.NoError(t, err)
	_, err = f.ByDate(context.Background(), pd)
	require.NoError(t, err)
	require.Equal(t, 1, store.getCalls, "second lookup should be served from cache")

	f.Invalidate()
	_, err = f.ByDate(context.Background(), pd)
	require.NoError(t, err)
	require.Equal(t, 2, store.getCalls)
}

// TestStorageErrorPropagates verifies unavailability surfaces as an error,
// never as absence.
func TestStorageErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	f := newFacade(&fakeStore{listErr: boom})

	_, err := f.ByDate(context.Background(), models.PartialDate{Day: 20, Month: 10})
	require.Error(t, err)

	_, err = f.All(context.Background())
	require.Error(t, err)
}

// TestAllEmptyStore verifies an empty store yields an empty slice.
func TestAllEmptyStore(t *testing.T) {
	f := newFacade(&fakeStore{days: map[string]models.DaySchedule{}})
	list, err := f.All(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}
