package goal

import (
	"errors"
	"github.com/burenotti/healthtrack/internal/domain"
	"time"
)

var (
	ErrGoalExists   = errors.New("goal already exists for this date")
	ErrGoalNotFound = errors.New("goal not found")
)

const (
	EventCreated = "goal.created"
	EventUpdated = "goal.updated"
	EventDeleted = "goal.deleted"
)

type BloodPressure struct {
	Systolic  int `diff:"systolic"`
	Diastolic int `diff:"diastolic"`
}

// Goal is the daily target a user sets for one calendar day. Diff tags name
// the columns an update is allowed to touch.
type Goal struct {
	domain.Aggregate `diff:"-"`
	GoalID           string         `diff:"-"`
	UserID           string         `diff:"-"`
	Date             time.Time      `diff:"-"`
	Workout          domain.Workout `diff:"workout"`
	WorkoutMinutes   int            `diff:"workout_minutes"`
	CaloriesBurnt    int            `diff:"calories_burnt"`
	WaterConsumption float64        `diff:"water_consumption"`
	SleepTime        string         `diff:"sleep_time"`
	WakeupTime       string         `diff:"wakeup_time"`
	BloodPressure    BloodPressure  `diff:"blood_pressure"`
	HeartRate        int            `diff:"heart_rate"`
	CreatedAt        time.Time      `diff:"-"`
	UpdatedAt        time.Time      `diff:"-"`
}

type Targets struct {
	Workout          domain.Workout
	WorkoutMinutes   int
	CaloriesBurnt    int
	WaterConsumption float64
	SleepTime        string
	WakeupTime       string
	BloodPressure    BloodPressure
	HeartRate        int
}

func New(goalID, userID string, date time.Time, t Targets) *Goal {
	now := time.Now().UTC()
	g := &Goal{
		GoalID:           goalID,
		UserID:           userID,
		Date:             date,
		Workout:          t.Workout,
		WorkoutMinutes:   t.WorkoutMinutes,
		CaloriesBurnt:    t.CaloriesBurnt,
		WaterConsumption: t.WaterConsumption,
		SleepTime:        t.SleepTime,
		WakeupTime:       t.WakeupTime,
		BloodPressure:    t.BloodPressure,
		HeartRate:        t.HeartRate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	g.PushEvent(CreatedEvent{At: now, GoalID: goalID, UserID: userID, Date: date})
	return g
}

// Patch holds the fields of an update; nil means "leave as is".
type Patch struct {
	Workout          *domain.Workout
	WorkoutMinutes   *int
	CaloriesBurnt    *int
	WaterConsumption *float64
	SleepTime        *string
	WakeupTime       *string
	Systolic         *int
	Diastolic        *int
	HeartRate        *int
}

// Apply reports whether the patch changed anything. UpdatedAt only moves when it did.
func (g *Goal) Apply(p Patch) bool {
	changed := domain.Assign(&g.Workout, p.Workout)
	changed = domain.Assign(&g.WorkoutMinutes, p.WorkoutMinutes) || changed
	changed = domain.Assign(&g.CaloriesBurnt, p.CaloriesBurnt) || changed
	changed = domain.Assign(&g.WaterConsumption, p.WaterConsumption) || changed
	changed = domain.Assign(&g.SleepTime, p.SleepTime) || changed
	changed = domain.Assign(&g.WakeupTime, p.WakeupTime) || changed
	changed = domain.Assign(&g.BloodPressure.Systolic, p.Systolic) || changed
	changed = domain.Assign(&g.BloodPressure.Diastolic, p.Diastolic) || changed
	changed = domain.Assign(&g.HeartRate, p.HeartRate) || changed
	if !changed {
		return false
	}

	g.UpdatedAt = time.Now().UTC()
	g.PushEvent(UpdatedEvent{At: g.UpdatedAt, GoalID: g.GoalID, UserID: g.UserID})
	return true
}

func (g *Goal) MarkDeleted() {
	g.PushEvent(DeletedEvent{At: time.Now().UTC(), GoalID: g.GoalID, UserID: g.UserID})
}

type CreatedEvent struct {
	At     time.Time
	GoalID string
	UserID string
	Date   time.Time
}

func (e CreatedEvent) Type() string {
	return EventCreated
}

func (e CreatedEvent) PublishedAt() time.Time {
	return e.At
}

type UpdatedEvent struct {
	At     time.Time
	GoalID string
	UserID string
}

func (e UpdatedEvent) Type() string {
	return EventUpdated
}

func (e UpdatedEvent) PublishedAt() time.Time {
	return e.At
}

type DeletedEvent struct {
	At     time.Time
	GoalID string
	UserID string
}

func (e DeletedEvent) Type() string {
	return EventDeleted
}

func (e DeletedEvent) PublishedAt() time.Time {
	return e.At
}
