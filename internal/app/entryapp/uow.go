package entryapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	entrystorage "github.com/burenotti/healthtrack/internal/adapter/storage/entries"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/entry"
	"time"
)

type EntryStorage interface {
	Add(ctx context.Context, e *entry.Entry) error
	GetByID(ctx context.Context, userID, entryID string) (*entry.Entry, error)
	GetByDate(ctx context.Context, userID string, day time.Time) (*entry.Entry, error)
	ListByUser(ctx context.Context, userID string) ([]*entry.Entry, error)
	Persist(ctx context.Context, e *entry.Entry) error
	Remove(ctx context.Context, e *entry.Entry) error
	CollectEvents() []domain.Event
	Close() error
}

type AtomicContext struct {
	ctx          context.Context
	db           storage.DBContext
	EntryStorage EntryStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.db.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.EntryStorage.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}

	if err != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), err)
	}

	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.EntryStorage.CollectEvents()
}

func NewAtomicContext(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:          ctx,
		db:           dbContext,
		EntryStorage: entrystorage.NewPostgresStorage(dbContext),
	}, nil
}
