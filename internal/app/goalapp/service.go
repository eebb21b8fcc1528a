package goalapp

import (
	"context"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/google/uuid"
	"log/slog"
	"time"
)

type Service struct {
	logger *slog.Logger
	loc    *time.Location
}

// New creates the goal service. Calendar days are resolved in loc.
func New(logger *slog.Logger, loc *time.Location) *Service {
	return &Service{logger: logger, loc: loc}
}

func (s *Service) List(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (goals []*goal.Goal, outErr error) {
	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if goals, err = ctx.GoalStorage.ListByUser(ctx.Context(), userID); err != nil {
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
) (g *goal.Goal, outErr error) {
	day, err := domain.ParseDay(date, s.loc)
	if err != nil {
		return nil, err
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if g, err = ctx.GoalStorage.GetByDate(ctx.Context(), userID, day); err != nil {
			return err
		}

		return ctx.Commit()
	})
	return
}

// Create stores a new goal. A second goal for the same day is rejected by the
// storage's unique index with goal.ErrGoalExists.
func (s *Service) Create(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	date string,
	targets goal.Targets,
) (g *goal.Goal, outErr error) {
	day, err := domain.ParseDay(date, s.loc)
	if err != nil {
		return nil, err
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		g = goal.New(uuid.NewString(), userID, day, targets)

		if err := ctx.GoalStorage.Add(ctx.Context(), g); err != nil {
			return err
		}

		return ctx.Commit()
	})
	if outErr != nil {
		g = nil
	}
	return
}

func (s *Service) Update(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	goalID string,
	patch goal.Patch,
) (g *goal.Goal, outErr error) {
	if _, err := uuid.Parse(goalID); err != nil {
		return nil, goal.ErrGoalNotFound
	}

	outErr = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		if g, err = ctx.GoalStorage.GetByID(ctx.Context(), userID, goalID); err != nil {
			return err
		}

		g.Apply(patch)

		if err := ctx.GoalStorage.Persist(ctx.Context(), g); err != nil {
			return err
		}

		return ctx.Commit()
	})
	if outErr != nil {
		g = nil
	}
	return
}

func (s *Service) Delete(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	goalID string,
) error {
	if _, err := uuid.Parse(goalID); err != nil {
		return goal.ErrGoalNotFound
	}

	return uow.Atomic(ctx, func(ctx *AtomicContext) error {
		g, err := ctx.GoalStorage.GetByID(ctx.Context(), userID, goalID)
		if err != nil {
			return err
		}

		g.MarkDeleted()

		if err := ctx.GoalStorage.Remove(ctx.Context(), g); err != nil {
			return err
		}

		return ctx.Commit()
	})
}
