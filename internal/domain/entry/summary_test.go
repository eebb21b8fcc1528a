package entry_test

import (
	"testing"
	"time"

	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/entry"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(id string, date time.Time, minutes int, water float64) *entry.Entry {
	return entry.New(id, "user-1", date, entry.Activity{
		Workout:          domain.WorkoutRunning,
		WorkoutMinutes:   minutes,
		WaterConsumption: water,
		SleepTime:        "23:00",
		WakeupTime:       "07:00",
	})
}

func newGoal(minutes int, water float64) *goal.Goal {
	return goal.New("goal-1", "user-1", time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), goal.Targets{
		Workout:          domain.WorkoutRunning,
		WorkoutMinutes:   minutes,
		WaterConsumption: water,
		SleepTime:        "23:00",
		WakeupTime:       "07:00",
		BloodPressure:    goal.BloodPressure{Systolic: 120, Diastolic: 80},
		HeartRate:        70,
	})
}

func TestCompareToday_NoEntriesWithGoal(t *testing.T) {
	view := entry.CompareToday(nil, newGoal(40, 2))

	assert.NotNil(t, view.Entries)
	assert.Empty(t, view.Entries)
	assert.Nil(t, view.Latest)
	assert.NotNil(t, view.Goal)
	assert.Nil(t, view.Totals)
	assert.Nil(t, view.Comparison)
}

func TestCompareToday_EntriesWithoutGoal(t *testing.T) {
	day := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	view := entry.CompareToday([]*entry.Entry{newEntry("e1", day, 0, 0)}, nil)

	require.NotNil(t, view.Totals)
	assert.Equal(t, 0, view.Totals.WorkoutMinutes)
	assert.Equal(t, 0.0, view.Totals.WaterConsumption)
	assert.Nil(t, view.Comparison)
	assert.Equal(t, "e1", view.Latest.EntryID)
}

func TestCompareToday_TotalsAndComparison(t *testing.T) {
	day := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	entries := []*entry.Entry{
		newEntry("newest", day, 30, 1.0),
		newEntry("oldest", day, 20, 0.5),
	}

	view := entry.CompareToday(entries, newGoal(40, 2.0))

	assert.Equal(t, "newest", view.Latest.EntryID)
	require.NotNil(t, view.Totals)
	assert.Equal(t, entry.Totals{WorkoutMinutes: 50, WaterConsumption: 1.5}, *view.Totals)
	require.NotNil(t, view.Comparison)
	assert.Equal(t, entry.Metric[int]{Actual: 50, Goal: 40, Achieved: true}, view.Comparison.WorkoutMinutes)
	assert.Equal(t, entry.Metric[float64]{Actual: 1.5, Goal: 2.0, Achieved: false}, view.Comparison.WaterConsumption)
}

func TestCompareToday_ExactlyOnTarget(t *testing.T) {
	day := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)
	view := entry.CompareToday([]*entry.Entry{newEntry("e1", day, 40, 2)}, newGoal(40, 2))

	require.NotNil(t, view.Comparison)
	assert.True(t, view.Comparison.WorkoutMinutes.Achieved)
	assert.True(t, view.Comparison.WaterConsumption.Achieved)
}

func TestSummarizeWeek_Averages(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	entries := []*entry.Entry{
		newEntry("a", base, 10, 1.0),
		newEntry("b", base.AddDate(0, 0, 1), 20, 1.5),
		newEntry("c", base.AddDate(0, 0, 2), 30, 2.0),
	}

	stats := entry.SummarizeWeek(entries)

	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, entry.Averages{WorkoutMinutes: 20, WaterConsumption: 1.5}, stats.Averages)
	require.Len(t, stats.Days, 3)
	assert.True(t, base.Equal(stats.Days[0].Date))
	assert.Equal(t, domain.WorkoutRunning, stats.Days[2].Workout)
}

func TestSummarizeWeek_DividesByEntryCount(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	entries := []*entry.Entry{
		newEntry("a", day, 10, 0.3),
		newEntry("b", day, 10, 0.3),
		newEntry("c", day.AddDate(0, 0, 1), 45, 0.5),
	}

	stats := entry.SummarizeWeek(entries)

	// (10+10+45)/3 = 21.67, (0.3+0.3+0.5)/3 = 0.3667
	assert.Equal(t, entry.Averages{WorkoutMinutes: 22, WaterConsumption: 0.4}, stats.Averages)
}

func TestSummarizeWeek_Empty(t *testing.T) {
	stats := entry.SummarizeWeek(nil)

	assert.NotNil(t, stats.Days)
	assert.Empty(t, stats.Days)
	assert.Equal(t, entry.Averages{}, stats.Averages)
	assert.Equal(t, 0, stats.TotalEntries)
}
