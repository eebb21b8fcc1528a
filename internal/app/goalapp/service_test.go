package goalapp_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/app/goalapp"
	"github.com/burenotti/healthtrack/internal/app/messagebus"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "3c1f6f0a-3f7e-4d0c-8d52-0b6c2f1d9e11"

var goalColumns = []string{
	"goal_id", "user_id", "date", "workout", "workout_minutes", "calories_burnt",
	"water_consumption", "sleep_time", "wakeup_time", "blood_pressure_systolic",
	"blood_pressure_diastolic", "heart_rate", "created_at", "updated_at",
}

var targets = goal.Targets{
	Workout:          domain.WorkoutRunning,
	WorkoutMinutes:   30,
	CaloriesBurnt:    300,
	WaterConsumption: 2,
	SleepTime:        "23:00",
	WakeupTime:       "7:00",
	BloodPressure:    goal.BloodPressure{Systolic: 120, Diastolic: 80},
	HeartRate:        70,
}

func TestMain(m *testing.M) {
	sqlf.SetDialect(sqlf.PostgreSQL)
	os.Exit(m.Run())
}

type fixture struct {
	svc  *goalapp.Service
	uow  *unitofwork.UnitOfWork[*goalapp.AtomicContext]
	bus  *messagebus.MessageBus
	mock sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := messagebus.New(logger)

	return &fixture{
		svc:  goalapp.New(logger, time.UTC),
		uow:  unitofwork.New(&storage.DB{DB: db}, goalapp.NewAtomicContext, bus, logger),
		bus:  bus,
		mock: mock,
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	var published []string
	f.bus.RegisterAll(func(e domain.Event) error {
		published = append(published, e.Type())
		return nil
	})

	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO goals`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	g, err := f.svc.Create(context.Background(), f.uow, userID, "2026-02-08", targets)
	require.NoError(t, err)
	f.bus.Close()

	assert.Equal(t, userID, g.UserID)
	assert.Equal(t, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), g.Date)
	assert.Equal(t, []string{goal.EventCreated}, published)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreate_SecondGoalForDayConflicts(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO goals`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO goals`).WillReturnError(&pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "goals_user_id_date_key",
	})
	f.mock.ExpectRollback()

	_, err := f.svc.Create(context.Background(), f.uow, userID, "2026-02-08", targets)
	require.NoError(t, err)

	g, err := f.svc.Create(context.Background(), f.uow, userID, "2026-02-08T15:30:00Z", targets)
	assert.Nil(t, g)
	assert.ErrorIs(t, err, goal.ErrGoalExists)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreate_InvalidDateSkipsStore(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.uow, userID, "yesterday", targets)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_MalformedIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	minutes := 10

	_, err := f.svc.Update(context.Background(), f.uow, userID, "not-a-uuid", goal.Patch{WorkoutMinutes: &minutes})
	assert.ErrorIs(t, err, goal.ErrGoalNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_OtherUsersGoalIsNotFound(t *testing.T) {
	f := newFixture(t)
	minutes := 10

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM goals g`).WillReturnRows(sqlmock.NewRows([]string{"goal_id"}))
	f.mock.ExpectRollback()

	_, err := f.svc.Update(
		context.Background(), f.uow, userID,
		"9b7a0d7e-3a55-4f1c-a0d1-5b1b2c3d4e5f", goal.Patch{WorkoutMinutes: &minutes},
	)
	assert.ErrorIs(t, err, goal.ErrGoalNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete_Twice(t *testing.T) {
	f := newFixture(t)
	goalID := "9b7a0d7e-3a55-4f1c-a0d1-5b1b2c3d4e5f"
	created := time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(goalColumns).AddRow(
		goalID, userID, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), "Running", int64(30), int64(300),
		2.0, "23:00", "7:00", int64(120), int64(80), int64(70), created, created,
	)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM goals g`).WillReturnRows(rows)
	f.mock.ExpectExec(`DELETE FROM goals`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM goals g`).WillReturnRows(sqlmock.NewRows([]string{"goal_id"}))
	f.mock.ExpectRollback()

	require.NoError(t, f.svc.Delete(context.Background(), f.uow, userID, goalID))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.uow, userID, goalID), goal.ErrGoalNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreate_ThenGetByDate(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO goals`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	created, err := f.svc.Create(context.Background(), f.uow, userID, "2026-02-08", targets)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM goals g WHERE g.user_id = \$1 AND g.date = \$2`).
		WithArgs(userID, created.Date).
		WillReturnRows(sqlmock.NewRows(goalColumns).AddRow(
			created.GoalID, created.UserID, created.Date, string(created.Workout), int64(created.WorkoutMinutes),
			int64(created.CaloriesBurnt), created.WaterConsumption, created.SleepTime, created.WakeupTime,
			int64(created.BloodPressure.Systolic), int64(created.BloodPressure.Diastolic), int64(created.HeartRate),
			created.CreatedAt, created.UpdatedAt,
		))
	f.mock.ExpectCommit()

	got, err := f.svc.GetByDate(context.Background(), f.uow, userID, "2026-02-08")
	require.NoError(t, err)

	assert.Equal(t, created.GoalID, got.GoalID)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, targets, goal.Targets{
		Workout:          got.Workout,
		WorkoutMinutes:   got.WorkoutMinutes,
		CaloriesBurnt:    got.CaloriesBurnt,
		WaterConsumption: got.WaterConsumption,
		SleepTime:        got.SleepTime,
		WakeupTime:       got.WakeupTime,
		BloodPressure:    got.BloodPressure,
		HeartRate:        got.HeartRate,
	})
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_EmptyPatchKeepsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	goalID := "9b7a0d7e-3a55-4f1c-a0d1-5b1b2c3d4e5f"
	stamp := time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(goalColumns).AddRow(
			goalID, userID, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), "Running", int64(30), int64(300),
			2.0, "23:00", "7:00", int64(120), int64(80), int64(70), stamp, stamp,
		)
	}

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM goals g`).WillReturnRows(row())
	f.mock.ExpectQuery(`FROM goals g`).WillReturnRows(row())
	f.mock.ExpectCommit()

	g, err := f.svc.Update(context.Background(), f.uow, userID, goalID, goal.Patch{})
	require.NoError(t, err)
	assert.True(t, g.UpdatedAt.Equal(stamp))
	require.NoError(t, f.mock.ExpectationsWereMet())
}
