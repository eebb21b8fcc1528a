package entryapp

import (
	"context"
	"errors"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/entry"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"log/slog"
	"time"
)

// EntryReader and GoalReader serve the dashboard views. They run outside a
// unit of work, straight on the connection pool, so both can be queried at once.
type EntryReader interface {
	ListInRange(ctx context.Context, userID string, from, to time.Time) ([]*entry.Entry, error)
	ListSince(ctx context.Context, userID string, from time.Time) ([]*entry.Entry, error)
}

type GoalReader interface {
	GetInRange(ctx context.Context, userID string, from, to time.Time) (*goal.Goal, error)
}

type Service struct {
	logger  *slog.Logger
	loc     *time.Location
	entries EntryReader
	goals   GoalReader
	now     func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(logger *slog.Logger, loc *time.Location, entries EntryReader, goals GoalReader, opts ...Option) *Service {
	s := &Service{
		logger:  logger,
		loc:     loc,
		entries: entries,
		goals:   goals,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (entries []*entry.Entry, outErr error) {
	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if entries, err = ctx.EntryStorage.ListByUser(ctx.Context(), userID); err != nil {
			return err
		}

		return ctx.Commit()
	})
	return
}

func (s *Service) GetByDate(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date string,
) (e *entry.Entry, outErr error) {
	day, err := domain.ParseDay(date, s.loc)
	if err != nil {
		return nil, err
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.EntryStorage.GetByDate(ctx.Context(), userID, day); err != nil {
			return err
		}

		return ctx.Commit()
	})
	return
}

// Create always inserts a new entry, other entries of the same day notwithstanding.
func (s *Service) Create(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date string,
	activity entry.Activity,
) (e *entry.Entry, outErr error) {
	day, err := domain.ParseDay(date, s.loc)
	if err != nil {
		return nil, err
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		e = entry.New(uuid.NewString(), userID, day, activity)

		if err := ctx.EntryStorage.Add(ctx.Context(), e); err != nil {
			return err
		}

		return ctx.Commit()
	})
	if outErr != nil {
		e = nil
	}
	return
}

func (s *Service) Update(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	entryID string,
	patch entry.Patch,
) (e *entry.Entry, outErr error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return nil, entry.ErrEntryNotFound
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if e, err = ctx.EntryStorage.GetByID(ctx.Context(), userID, entryID); err != nil {
			return err
		}

		e.Apply(patch)

		if err := ctx.EntryStorage.Persist(ctx.Context(), e); err != nil {
			return err
		}

		return ctx.Commit()
	})
	if outErr != nil {
		e = nil
	}
	return
}

func (s *Service) Delete(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	entryID string,
) error {
	if _, err := uuid.Parse(entryID); err != nil {
		return entry.ErrEntryNotFound
	}

	return uow.Atomic(ctx, func(ctx *AtomicContext) error {
		e, err := ctx.EntryStorage.GetByID(ctx.Context(), userID, entryID)
		if err != nil {
			return err
		}

		e.MarkDeleted()

		if err := ctx.EntryStorage.Remove(ctx.Context(), e); err != nil {
			return err
		}

		return ctx.Commit()
	})
}

// TodayComparison compares the entries logged for the current day in the
// service's timezone with that day's goal.
func (s *Service) TodayComparison(ctx context.Context, userID string) (*entry.TodayComparison, error) {
	start, end := domain.DayBounds(s.now(), s.loc)

	var (
		entries []*entry.Entry
		today   *goal.Goal
		g       errgroup.Group
	)

	g.Go(func() error {
		var err error
		entries, err = s.entries.ListInRange(ctx, userID, start, end)
		return err
	})

	g.Go(func() error {
		found, err := s.goals.GetInRange(ctx, userID, start, end)
		if errors.Is(err, goal.ErrGoalNotFound) {
			return nil
		}
		today = found
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return entry.CompareToday(entries, today), nil
}

// WeeklyStats summarises every entry dated within the last seven days,
// counting back from now with no upper bound.
func (s *Service) WeeklyStats(ctx context.Context, userID string) (*entry.WeeklyStats, error) {
	entries, err := s.entries.ListSince(ctx, userID, domain.WeekAgo(s.now()))
	if err != nil {
		return nil, err
	}
	return entry.SummarizeWeek(entries), nil
}
