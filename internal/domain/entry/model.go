package entry

import (
	"errors"
	"github.com/burenotti/healthtrack/internal/domain"
	"time"
)

var (
	ErrEntryNotFound = errors.New("entry not found")
)

const (
	EventLogged  = "entry.logged"
	EventUpdated = "entry.updated"
	EventDeleted = "entry.deleted"
)

// Entry is one logged activity. A user may log any number of entries per day.
type Entry struct {
	domain.Aggregate `diff:"-"`
	EntryID          string         `diff:"-"`
	UserID           string         `diff:"-"`
	Date             time.Time      `diff:"-"`
	Workout          domain.Workout `diff:"workout"`
	WorkoutMinutes   int            `diff:"workout_minutes"`
	WaterConsumption float64        `diff:"water_consumption"`
	SleepTime        string         `diff:"sleep_time"`
	WakeupTime       string         `diff:"wakeup_time"`
	CreatedAt        time.Time      `diff:"-"`
	UpdatedAt        time.Time      `diff:"-"`
}

type Activity struct {
	Workout          domain.Workout
	WorkoutMinutes   int
	WaterConsumption float64
	SleepTime        string
	WakeupTime       string
}

func New(entryID, userID string, date time.Time, a Activity) *Entry {
	now := time.Now().UTC()
	e := &Entry{
		EntryID:          entryID,
		UserID:           userID,
		Date:             date,
		Workout:          a.Workout,
		WorkoutMinutes:   a.WorkoutMinutes,
		WaterConsumption: a.WaterConsumption,
		SleepTime:        a.SleepTime,
		WakeupTime:       a.WakeupTime,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	e.PushEvent(LoggedEvent{
		At:               now,
		EntryID:          entryID,
		UserID:           userID,
		Workout:          a.Workout,
		WorkoutMinutes:   a.WorkoutMinutes,
		WaterConsumption: a.WaterConsumption,
	})
	return e
}

type Patch struct {
	Workout          *domain.Workout
	WorkoutMinutes   *int
	WaterConsumption *float64
	SleepTime        *string
	WakeupTime       *string
}

func (e *Entry) Apply(p Patch) bool {
	changed := domain.Assign(&e.Workout, p.Workout)
	changed = domain.Assign(&e.WorkoutMinutes, p.WorkoutMinutes) || changed
	changed = domain.Assign(&e.WaterConsumption, p.WaterConsumption) || changed
	changed = domain.Assign(&e.SleepTime, p.SleepTime) || changed
	changed = domain.Assign(&e.WakeupTime, p.WakeupTime) || changed
	if !changed {
		return false
	}

	e.UpdatedAt = time.Now().UTC()
	e.PushEvent(UpdatedEvent{At: e.UpdatedAt, EntryID: e.EntryID, UserID: e.UserID})
	return true
}

func (e *Entry) MarkDeleted() {
	e.PushEvent(DeletedEvent{At: time.Now().UTC(), EntryID: e.EntryID, UserID: e.UserID})
}

type LoggedEvent struct {
	At               time.Time
	EntryID          string
	UserID           string
	Workout          domain.Workout
	WorkoutMinutes   int
	WaterConsumption float64
}

func (e LoggedEvent) Type() string {
	return EventLogged
}

func (e LoggedEvent) PublishedAt() time.Time {
	return e.At
}

type UpdatedEvent struct {
	At      time.Time
	EntryID string
	UserID  string
}

func (e UpdatedEvent) Type() string {
	return EventUpdated
}

func (e UpdatedEvent) PublishedAt() time.Time {
	return e.At
}

type DeletedEvent struct {
	At      time.Time
	EntryID string
	UserID  string
}

func (e DeletedEvent) Type() string {
	return EventDeleted
}

func (e DeletedEvent) PublishedAt() time.Time {
	return e.At
}
