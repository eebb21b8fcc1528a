package pgutil

import (
	"database/sql"
	"errors"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"strings"
	"sync"
)

// BasePostgresStorage tracks the aggregates a storage has touched so their
// events can be collected once the unit of work succeeds.
type BasePostgresStorage struct {
	DB     storage.DBContext
	seenMu sync.Mutex
	seen   map[string]domain.EventSource
}

func NewBasePostgresStorage(db storage.DBContext) *BasePostgresStorage {
	return &BasePostgresStorage{
		DB:   db,
		seen: make(map[string]domain.EventSource),
	}
}

func (s *BasePostgresStorage) CollectEvents() []domain.Event {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	var events []domain.Event
	for _, src := range s.seen {
		events = append(events, src.PopEvents()...)
	}
	s.seen = make(map[string]domain.EventSource)
	return events
}

func (s *BasePostgresStorage) Close() {
	s.seenMu.Lock()
	s.seen = make(map[string]domain.EventSource)
	s.seenMu.Unlock()
}

func (s *BasePostgresStorage) MarkSeen(id string, src domain.EventSource) {
	s.seenMu.Lock()
	s.seen[id] = src
	s.seenMu.Unlock()
}

func ViolatesConstraint(err error, constraintName string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
		pgErr.ConstraintName == constraintName
}

func FirstOrErr[V any](items []V, err, notFoundErr error) (V, error) {
	if err != nil {
		return *new(V), err
	}

	if len(items) == 0 {
		return *new(V), notFoundErr
	}

	return items[0], nil
}

// MakeUpdateQuery turns a changelog into SET clauses. Nested struct paths are
// flattened with an underscore, so blood_pressure.systolic becomes
// blood_pressure_systolic.
func MakeUpdateQuery(stmt *sqlf.Stmt, updates diff.Changelog) *sqlf.Stmt {
	for _, upd := range updates {
		column := strings.Join(upd.Path, "_")
		switch upd.Type {
		case diff.UPDATE, diff.CREATE:
			stmt = stmt.Set(column, upd.To)
		case diff.DELETE:
			stmt = stmt.Set(column, nil)
		}
	}
	return stmt
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}
