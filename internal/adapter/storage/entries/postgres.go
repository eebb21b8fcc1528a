package entrystorage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/adapter/storage/pgutil"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/entry"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"time"
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, e *entry.Entry) error {
	q := sqlf.InsertInto("entries").
		Set("entry_id", e.EntryID).
		Set("user_id", e.UserID).
		Set("date", e.Date).
		Set("workout", string(e.Workout)).
		Set("workout_minutes", e.WorkoutMinutes).
		Set("water_consumption", e.WaterConsumption).
		Set("sleep_time", e.SleepTime).
		Set("wakeup_time", e.WakeupTime).
		Set("created_at", e.CreatedAt).
		Set("updated_at", e.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}

	s.base.MarkSeen(e.EntryID, e)
	return nil
}

type entryRow struct {
	EntryID          string
	UserID           string
	Date             time.Time
	Workout          string
	WorkoutMinutes   int
	WaterConsumption float64
	SleepTime        string
	WakeupTime       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *entryRow) toDomain() *entry.Entry {
	return &entry.Entry{
		EntryID:          r.EntryID,
		UserID:           r.UserID,
		Date:             r.Date,
		Workout:          domain.Workout(r.Workout),
		WorkoutMinutes:   r.WorkoutMinutes,
		WaterConsumption: r.WaterConsumption,
		SleepTime:        r.SleepTime,
		WakeupTime:       r.WakeupTime,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*entry.Entry, error) {
	var tmp entryRow

	q := sqlf.From("entries e").
		Select("e.entry_id").To(&tmp.EntryID).
		Select("e.user_id").To(&tmp.UserID).
		Select("e.date").To(&tmp.Date).
		Select("e.workout").To(&tmp.Workout).
		Select("e.workout_minutes").To(&tmp.WorkoutMinutes).
		Select("e.water_consumption").To(&tmp.WaterConsumption).
		Select("e.sleep_time").To(&tmp.SleepTime).
		Select("e.wakeup_time").To(&tmp.WakeupTime).
		Select("e.created_at").To(&tmp.CreatedAt).
		Select("e.updated_at").To(&tmp.UpdatedAt)

	modify(q)

	result := make([]*entry.Entry, 0)

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, tmp.toDomain())
	})

	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return result, nil
	}

	return nil, storage.InternalError(err)
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID, entryID string) (*entry.Entry, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.entry_id = ?", entryID).Where("e.user_id = ?", userID)
	})
	return pgutil.FirstOrErr(result, err, entry.ErrEntryNotFound)
}

// GetByDate returns the earliest logged entry of the day.
func (s *PostgresStorage) GetByDate(ctx context.Context, userID string, day time.Time) (*entry.Entry, error) {
	result, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).
			Where("e.date = ?", day).
			OrderBy("e.created_at").
			Limit(1)
	})
	return pgutil.FirstOrErr(result, err, entry.ErrEntryNotFound)
}

func (s *PostgresStorage) ListByUser(ctx context.Context, userID string) ([]*entry.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).OrderBy("e.date DESC", "e.created_at DESC")
	})
}

// ListInRange returns entries dated within [from, to], newest logged first.
func (s *PostgresStorage) ListInRange(ctx context.Context, userID string, from, to time.Time) ([]*entry.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).
			Where("e.date >= ?", from).
			Where("e.date <= ?", to).
			OrderBy("e.created_at DESC")
	})
}

// ListSince returns entries dated at or after from in chronological order.
func (s *PostgresStorage) ListSince(ctx context.Context, userID string, from time.Time) ([]*entry.Entry, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("e.user_id = ?", userID).
			Where("e.date >= ?", from).
			OrderBy("e.date", "e.created_at")
	})
}

func (s *PostgresStorage) Persist(ctx context.Context, e *entry.Entry) error {
	dbState, err := s.GetByID(ctx, e.UserID, e.EntryID)
	if err != nil {
		return err
	}

	changes, err := diff.Diff(dbState, e)
	if err != nil {
		return storage.InternalError(err)
	}

	if len(changes) != 0 {
		q := sqlf.Update("entries").
			Where("entry_id = ?", e.EntryID).
			Where("user_id = ?", e.UserID)
		q = pgutil.MakeUpdateQuery(q, changes).Set("updated_at", e.UpdatedAt)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, entry.ErrEntryNotFound); err != nil {
			return err
		}
	}

	s.base.MarkSeen(e.EntryID, e)
	return nil
}

func (s *PostgresStorage) Remove(ctx context.Context, e *entry.Entry) error {
	q := sqlf.DeleteFrom("entries").
		Where("entry_id = ?", e.EntryID).
		Where("user_id = ?", e.UserID)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, entry.ErrEntryNotFound); err != nil {
		return err
	}

	s.base.MarkSeen(e.EntryID, e)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
