package goalapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	goalstorage "github.com/burenotti/healthtrack/internal/adapter/storage/goals"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"time"
)

type GoalStorage interface {
	Add(ctx context.Context, g *goal.Goal) error
	GetByID(ctx context.Context, userID, goalID string) (*goal.Goal, error)
	GetByDate(ctx context.Context, userID string, day time.Time) (*goal.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]*goal.Goal, error)
	Persist(ctx context.Context, g *goal.Goal) error
	Remove(ctx context.Context, g *goal.Goal) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx         context.Context
	db          storage.DBContext
	GoalStorage GoalStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.GoalStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.GoalStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:         ctx,
		db:          dbContext,
		GoalStorage: goalstorage.NewPostgresStorage(dbContext),
	}, nil
}
