package goalstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/adapter/storage/pgutil"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"time"
)

const uniqueDayConstraint = "goals_user_id_date_key"

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, g *goal.Goal) error {
	q := sqlf.InsertInto("goals").
		Set("goal_id", g.GoalID).
		Set("user_id", g.UserID).
		Set("date", g.Date).
		Set("workout", string(g.Workout)).
		Set("workout_minutes", g.WorkoutMinutes).
		Set("calories_burnt", g.CaloriesBurnt).
		Set("water_consumption", g.WaterConsumption).
		Set("sleep_time", g.SleepTime).
		Set("wakeup_time", g.WakeupTime).
		Set("blood_pressure_systolic", g.BloodPressure.Systolic).
		Set("blood_pressure_diastolic", g.BloodPressure.Diastolic).
		Set("heart_rate", g.HeartRate).
		Set("created_at", g.CreatedAt).
		Set("updated_at", g.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, uniqueDayConstraint) {
			return errors.Join(fmt.Errorf("goal for %s: %w", g.Date.Format(domain.DayLayout), err), goal.ErrGoalExists)
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(g.GoalID, g)
	return nil
}

type goalRow struct {
	GoalID           string
	UserID           string
	Date             time.Time
	Workout          string
	WorkoutMinutes   int
	CaloriesBurnt    int
	WaterConsumption float64
	SleepTime        string
	WakeupTime       string
	Systolic         int
	Diastolic        int
	HeartRate        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *goalRow) toDomain() *goal.Goal {
	return &goal.Goal{
		GoalID:           r.GoalID,
		UserID:           r.UserID,
		Date:             r.Date,
		Workout:          domain.Workout(r.Workout),
		WorkoutMinutes:   r.WorkoutMinutes,
		CaloriesBurnt:    r.CaloriesBurnt,
		WaterConsumption: r.WaterConsumption,
		SleepTime:        r.SleepTime,
		WakeupTime:       r.WakeupTime,
		BloodPressure: goal.BloodPressure{
			Systolic:  r.Systolic,
			Diastolic: r.Diastolic,
		},
		HeartRate: r.HeartRate,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*goal.Goal, error) {
	var tmp goalRow

	q := sqlf.From("goals g").
		Select("g.goal_id").To(&tmp.GoalID).
		Select("g.user_id").To(&tmp.UserID).
		Select("g.date").To(&tmp.Date).
		Select("g.workout").To(&tmp.Workout).
		Select("g.workout_minutes").To(&tmp.WorkoutMinutes).
		Select("g.calories_burnt").To(&tmp.CaloriesBurnt).
		Select("g.water_consumption").To(&tmp.WaterConsumption).
		Select("g.sleep_time").To(&tmp.SleepTime).
		Select("g.wakeup_time").To(&tmp.WakeupTime).
		Select("g.blood_pressure_systolic").To(&tmp.Systolic).
		Select("g.blood_pressure_diastolic").To(&tmp.Diastolic).
		Select("g.heart_rate").To(&tmp.HeartRate).
		Select("g.created_at").To(&tmp.CreatedAt).
		Select("g.updated_at").To(&tmp.UpdatedAt)

	modify(q)

	result := make([]*goal.Goal, 0)

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, tmp.toDomain())
	})

	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return result, nil
	}

	return nil, storage.InternalError(err)
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID, goalID string) (*goal.Goal, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("g.goal_id = ?", goalID).Where("g.user_id = ?", userID)
	})
	return pgutil.FirstOrErr(result, err, goal.ErrGoalNotFound)
}

func (s *PostgresStorage) GetByDate(ctx context.Context, userID string, day time.Time) (*goal.Goal, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("g.user_id = ?", userID).Where("g.date = ?", day)
	})
	return pgutil.FirstOrErr(result, err, goal.ErrGoalNotFound)
}

// GetInRange returns the goal whose date falls into [from, to].
func (s *PostgresStorage) GetInRange(ctx context.Context, userID string, from, to time.Time) (*goal.Goal, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("g.user_id = ?", userID).
			Where("g.date >= ?", from).
			Where("g.date <= ?", to).
			OrderBy("g.date").
			Limit(1)
	})
	return pgutil.FirstOrErr(result, err, goal.ErrGoalNotFound)
}

func (s *PostgresStorage) ListByUser(ctx context.Context, userID string) ([]*goal.Goal, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("g.user_id = ?", userID).OrderBy("g.date DESC")
	})
}

// Persist writes only the columns that differ from the stored row.
func (s *PostgresStorage) Persist(ctx context.Context, g *goal.Goal) error {
	dbState, err := s.GetByID(ctx, g.UserID, g.GoalID)
	if err != nil {
		return err
	}

	changes, err := diff.Diff(dbState, g)
	if err != nil {
		return storage.InternalError(err)
	}

	if len(changes) != 0 {
		q := sqlf.Update("goals").
			Where("goal_id = ?", g.GoalID).
			Where("user_id = ?", g.UserID)
		q = pgutil.MakeUpdateQuery(q, changes).Set("updated_at", g.UpdatedAt)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, goal.ErrGoalNotFound); err != nil {
			return err
		}
	}

	s.base.MarkSeen(g.GoalID, g)
	return nil
}

func (s *PostgresStorage) Remove(ctx context.Context, g *goal.Goal) error {
	q := sqlf.DeleteFrom("goals").
		Where("goal_id = ?", g.GoalID).
		Where("user_id = ?", g.UserID)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, goal.ErrGoalNotFound); err != nil {
		return err
	}

	s.base.MarkSeen(g.GoalID, g)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
