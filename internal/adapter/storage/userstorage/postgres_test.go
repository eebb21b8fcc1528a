package userstorage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/adapter/storage/userstorage"
	"github.com/burenotti/healthtrack/internal/domain/auth"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{
	"user_id", "username", "email", "password_hash", "created_at", "updated_at",
	"authorization_id", "secret", "valid_until", "logout_at", "created_at",
	"os", "browser", "device_model", "ip_address",
}

func TestMain(m *testing.M) {
	sqlf.SetDialect(sqlf.PostgreSQL)
	os.Exit(m.Run())
}

func newStorage(t *testing.T) (*userstorage.PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return userstorage.NewPostgresStorage(&storage.DB{DB: db}), mock
}

func TestAdd_DuplicateEmail(t *testing.T) {
	s, mock := newStorage(t)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "users_email_key",
	})

	err := s.Add(context.Background(), &auth.User{UserID: "u-1", Email: "alice@example.com"})
	assert.ErrorIs(t, err, auth.ErrUserEmailDuplicate)
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestGetByAuthSecret_LoadsEveryAuthorization(t *testing.T) {
	s, mock := newStorage(t)
	now := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	mock.ExpectQuery(`FROM users u LEFT JOIN authorizations a ON .* WHERE u.user_id = \(SELECT user_id FROM authorizations WHERE secret = \$1\)`).
		WithArgs("secret-2").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "alice", "alice@example.com", "hash", now, now,
				"a-1", "secret-1", later, now, now, "Linux", "Firefox", "", "10.0.0.1").
			AddRow("u-1", "alice", "alice@example.com", "hash", now, now,
				"a-2", "secret-2", later, nil, now, "iOS", "Safari", "iPhone", "10.0.0.2"))

	u, err := s.GetByAuthSecret(context.Background(), "secret-2")
	require.NoError(t, err)

	require.Len(t, u.Authorizations, 2)
	assert.NotNil(t, u.Authorizations[0].LogoutAt)
	a := u.GetAuthBySecret("secret-2")
	require.NotNil(t, a)
	assert.Equal(t, "a-2", a.ID)
	assert.Equal(t, auth.Device{Browser: "Safari", OS: "iOS", IPAddress: "10.0.0.2", Model: "iPhone"}, a.Device)
}

func TestGetByEmail_NotFound(t *testing.T) {
	s, mock := newStorage(t)

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := s.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestPersist_ClosesAuthorization(t *testing.T) {
	s, mock := newStorage(t)
	now := time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	mock.ExpectQuery(`WHERE u.user_id = \$1`).WillReturnRows(sqlmock.NewRows(userColumns).
		AddRow("u-1", "alice", "alice@example.com", "hash", now, now,
			"a-1", "secret-1", later, nil, now, "Linux", "Firefox", "", "10.0.0.1"))
	mock.ExpectExec(`UPDATE authorizations SET logout_at\s*=\s*\$1 WHERE authorization_id = \$2`).
		WithArgs(sqlmock.AnyArg(), "a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	logoutAt := now.Add(time.Minute)
	u := &auth.User{
		UserID:       "u-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Authorizations: []*auth.Authorization{{
			ID:         "a-1",
			Secret:     "secret-1",
			CreatedAt:  now,
			ValidUntil: later,
			LogoutAt:   &logoutAt,
		}},
	}

	require.NoError(t, s.Persist(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}
