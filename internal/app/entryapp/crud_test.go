package entryapp_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/app/entryapp"
	"github.com/burenotti/healthtrack/internal/app/messagebus"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/entry"
	"github.com/leporo/sqlf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "3c1f6f0a-3f7e-4d0c-8d52-0b6c2f1d9e11"
	entryID = "5d2c9a3e-1b4f-4c6a-9e8d-7f6a5b4c3d21"
)

var entryColumns = []string{
	"entry_id", "user_id", "date", "workout", "workout_minutes", "water_consumption",
	"sleep_time", "wakeup_time", "created_at", "updated_at",
}

var activity = entry.Activity{
	Workout:          domain.WorkoutRunning,
	WorkoutMinutes:   30,
	WaterConsumption: 2.5,
	SleepTime:        "23:00",
	WakeupTime:       "7:00",
}

func TestMain(m *testing.M) {
	sqlf.SetDialect(sqlf.PostgreSQL)
	os.Exit(m.Run())
}

type crudFixture struct {
	svc  *entryapp.Service
	uow  *unitofwork.UnitOfWork[*entryapp.AtomicContext]
	bus  *messagebus.MessageBus
	mock sqlmock.Sqlmock
}

func newCRUDFixture(t *testing.T) *crudFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := messagebus.New(logger)

	return &crudFixture{
		svc:  entryapp.New(logger, time.UTC, nil, nil),
		uow:  unitofwork.New(&storage.DB{DB: db}, entryapp.NewAtomicContext, bus, logger),
		bus:  bus,
		mock: mock,
	}
}

func (f *crudFixture) record(t *testing.T) *[]string {
	t.Helper()
	var published []string
	f.bus.RegisterAll(func(e domain.Event) error {
		published = append(published, e.Type())
		return nil
	})
	return &published
}

var stamp = time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)

func storedRow() *sqlmock.Rows {
	return sqlmock.NewRows(entryColumns).AddRow(
		entryID, ownerID, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC), "Running", int64(30), 2.5,
		"23:00", "7:00", stamp, stamp,
	)
}

func TestCreate_SameDayTwice(t *testing.T) {
	f := newCRUDFixture(t)
	published := f.record(t)

	for range 2 {
		f.mock.ExpectBegin()
		f.mock.ExpectExec(`INSERT INTO entries`).
			WithArgs(sqlmock.AnyArg(), ownerID, time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC),
				"Running", 30, 2.5, "23:00", "7:00", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		f.mock.ExpectCommit()
	}

	first, err := f.svc.Create(context.Background(), f.uow, ownerID, "2026-02-08", activity)
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), f.uow, ownerID, "2026-02-08T18:00:00Z", activity)
	require.NoError(t, err)
	f.bus.Close()

	assert.NotEqual(t, first.EntryID, second.EntryID)
	assert.Equal(t, first.Date, second.Date)
	assert.Equal(t, []string{entry.EventLogged, entry.EventLogged}, *published)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreate_ThenGetByDate(t *testing.T) {
	f := newCRUDFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectExec(`INSERT INTO entries`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	created, err := f.svc.Create(context.Background(), f.uow, ownerID, "2026-02-08", activity)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM entries e WHERE e.user_id = \$1 AND e.date = \$2 ORDER BY e.created_at LIMIT 1`).
		WithArgs(ownerID, created.Date).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(
			created.EntryID, created.UserID, created.Date, string(created.Workout), int64(created.WorkoutMinutes),
			created.WaterConsumption, created.SleepTime, created.WakeupTime, created.CreatedAt, created.UpdatedAt,
		))
	f.mock.ExpectCommit()

	got, err := f.svc.GetByDate(context.Background(), f.uow, ownerID, "2026-02-08")
	require.NoError(t, err)

	assert.Equal(t, created.EntryID, got.EntryID)
	assert.Equal(t, ownerID, got.UserID)
	assert.Equal(t, activity, entry.Activity{
		Workout:          got.Workout,
		WorkoutMinutes:   got.WorkoutMinutes,
		WaterConsumption: got.WaterConsumption,
		SleepTime:        got.SleepTime,
		WakeupTime:       got.WakeupTime,
	})
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestGetByDate_InvalidDateSkipsStore(t *testing.T) {
	f := newCRUDFixture(t)

	_, err := f.svc.GetByDate(context.Background(), f.uow, ownerID, "someday")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_MalformedIDIsNotFound(t *testing.T) {
	f := newCRUDFixture(t)
	minutes := 10

	_, err := f.svc.Update(context.Background(), f.uow, ownerID, "42", entry.Patch{WorkoutMinutes: &minutes})
	assert.ErrorIs(t, err, entry.ErrEntryNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_OtherUsersEntryIsNotFound(t *testing.T) {
	f := newCRUDFixture(t)
	minutes := 10

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM entries e WHERE e.entry_id = \$1 AND e.user_id = \$2`).
		WithArgs(entryID, "someone-else").
		WillReturnRows(sqlmock.NewRows(entryColumns))
	f.mock.ExpectRollback()

	e, err := f.svc.Update(context.Background(), f.uow, "someone-else", entryID, entry.Patch{WorkoutMinutes: &minutes})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, entry.ErrEntryNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_WritesChange(t *testing.T) {
	f := newCRUDFixture(t)
	published := f.record(t)
	minutes := 45

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM entries e`).WillReturnRows(storedRow())
	f.mock.ExpectQuery(`FROM entries e`).WillReturnRows(storedRow())
	f.mock.ExpectExec(`^UPDATE entries SET workout_minutes\s*=\s*\$1,\s*updated_at\s*=\s*\$2\s+WHERE`).
		WithArgs(45, sqlmock.AnyArg(), entryID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	e, err := f.svc.Update(context.Background(), f.uow, ownerID, entryID, entry.Patch{WorkoutMinutes: &minutes})
	require.NoError(t, err)
	f.bus.Close()

	assert.Equal(t, 45, e.WorkoutMinutes)
	assert.True(t, e.UpdatedAt.After(stamp))
	assert.Equal(t, []string{entry.EventUpdated}, *published)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdate_SameValuesLeaveEntryUntouched(t *testing.T) {
	f := newCRUDFixture(t)
	published := f.record(t)
	minutes := 30

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM entries e`).WillReturnRows(storedRow())
	f.mock.ExpectQuery(`FROM entries e`).WillReturnRows(storedRow())
	f.mock.ExpectCommit()

	e, err := f.svc.Update(context.Background(), f.uow, ownerID, entryID, entry.Patch{WorkoutMinutes: &minutes})
	require.NoError(t, err)
	f.bus.Close()

	assert.True(t, e.UpdatedAt.Equal(stamp))
	assert.Empty(t, *published)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete_Twice(t *testing.T) {
	f := newCRUDFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM entries e`).WillReturnRows(storedRow())
	f.mock.ExpectExec(`DELETE FROM entries WHERE entry_id = \$1 AND user_id = \$2`).
		WithArgs(entryID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM entries e`).WillReturnRows(sqlmock.NewRows(entryColumns))
	f.mock.ExpectRollback()

	require.NoError(t, f.svc.Delete(context.Background(), f.uow, ownerID, entryID))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.uow, ownerID, entryID), entry.ErrEntryNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete_MalformedIDIsNotFound(t *testing.T) {
	f := newCRUDFixture(t)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), f.uow, ownerID, "not-a-uuid"), entry.ErrEntryNotFound)
	require.NoError(t, f.mock.ExpectationsWereMet())
}
