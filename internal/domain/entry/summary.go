package entry

import (
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/samber/lo"
	"math"
	"time"
)

type Totals struct {
	WorkoutMinutes   int
	WaterConsumption float64
}

type Metric[T int | float64] struct {
	Actual   T
	Goal     T
	Achieved bool
}

func compare[T int | float64](actual, target T) Metric[T] {
	return Metric[T]{Actual: actual, Goal: target, Achieved: actual >= target}
}

type Comparison struct {
	WorkoutMinutes   Metric[int]
	WaterConsumption Metric[float64]
}

// TodayComparison is the dashboard view of one day. Totals is nil when
// nothing was logged, and Comparison is nil unless both a goal and entries exist.
type TodayComparison struct {
	Entries    []*Entry
	Latest     *Entry
	Goal       *goal.Goal
	Totals     *Totals
	Comparison *Comparison
}

// CompareToday expects entries ordered newest first.
func CompareToday(entries []*Entry, g *goal.Goal) *TodayComparison {
	view := &TodayComparison{
		Entries: entries,
		Goal:    g,
	}
	if view.Entries == nil {
		view.Entries = make([]*Entry, 0)
	}
	if len(entries) == 0 {
		return view
	}

	view.Latest = entries[0]
	view.Totals = &Totals{
		WorkoutMinutes:   lo.SumBy(entries, func(e *Entry) int { return e.WorkoutMinutes }),
		WaterConsumption: lo.SumBy(entries, func(e *Entry) float64 { return e.WaterConsumption }),
	}

	if g != nil {
		view.Comparison = &Comparison{
			WorkoutMinutes:   compare(view.Totals.WorkoutMinutes, g.WorkoutMinutes),
			WaterConsumption: compare(view.Totals.WaterConsumption, g.WaterConsumption),
		}
	}
	return view
}

type DayStat struct {
	Date             time.Time
	WorkoutMinutes   int
	WaterConsumption float64
	Workout          domain.Workout
}

type Averages struct {
	WorkoutMinutes   int
	WaterConsumption float64
}

type WeeklyStats struct {
	Days         []DayStat
	Averages     Averages
	TotalEntries int
}

// SummarizeWeek averages over entries, not distinct days. An empty week
// yields zero averages rather than an absent value.
func SummarizeWeek(entries []*Entry) *WeeklyStats {
	stats := &WeeklyStats{
		Days: lo.Map(entries, func(e *Entry, _ int) DayStat {
			return DayStat{
				Date:             e.Date,
				WorkoutMinutes:   e.WorkoutMinutes,
				WaterConsumption: e.WaterConsumption,
				Workout:          e.Workout,
			}
		}),
		TotalEntries: len(entries),
	}
	if len(entries) == 0 {
		return stats
	}

	n := float64(len(entries))
	minutes := lo.SumBy(entries, func(e *Entry) int { return e.WorkoutMinutes })
	water := lo.SumBy(entries, func(e *Entry) float64 { return e.WaterConsumption })

	stats.Averages = Averages{
		WorkoutMinutes:   int(math.Round(float64(minutes) / n)),
		WaterConsumption: math.Round(water/n*10) / 10,
	}
	return stats
}
