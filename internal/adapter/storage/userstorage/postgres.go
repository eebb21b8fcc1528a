package userstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/adapter/storage/pgutil"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/auth"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"time"
)

const (
	emailConstraint = "users_email_key"
	userPkey        = "users_pkey"
	authPkey        = "authorizations_pkey"
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, u *auth.User) error {
	q := sqlf.InsertInto("users").
		Set("user_id", u.UserID).
		Set("username", u.Username).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("created_at", u.CreatedAt).
		Set("updated_at", u.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, emailConstraint) {
			return errors.Join(fmt.Errorf("user exists: %w", err), auth.ErrUserEmailDuplicate)
		}
		if pgutil.ViolatesConstraint(err, userPkey) {
			return errors.Join(fmt.Errorf("user exists: %w", err), auth.ErrUserExists)
		}
		return storage.InternalError(err)
	}

	for _, a := range u.Authorizations {
		if err := s.addAuth(ctx, u.UserID, a); err != nil {
			return err
		}
	}

	s.base.MarkSeen(u.UserID, u)
	return nil
}

func (s *PostgresStorage) addAuth(ctx context.Context, userID string, a *auth.Authorization) error {
	q := sqlf.InsertInto("authorizations").
		Set("authorization_id", a.ID).
		Set("user_id", userID).
		Set("secret", a.Secret).
		Set("created_at", a.CreatedAt).
		Set("valid_until", a.ValidUntil).
		Set("logout_at", a.LogoutAt).
		Set("browser", a.Device.Browser).
		Set("os", a.Device.OS).
		Set("ip_address", a.Device.IPAddress).
		Set("device_model", a.Device.Model)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, authPkey) {
			return auth.ErrAuthorizationExists
		}
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	whereClause string,
	whereArgs ...any,
) ([]*auth.User, error) {
	var tmp userWithAuthRow

	q := sqlf.From("users u").
		LeftJoin("authorizations a", "u.user_id = a.user_id").
		Where(whereClause, whereArgs...).
		Select("u.user_id").To(&tmp.UserID).
		Select("u.username").To(&tmp.Username).
		Select("u.email").To(&tmp.Email).
		Select("u.password_hash").To(&tmp.PasswordHash).
		Select("u.created_at").To(&tmp.CreatedAt).
		Select("u.updated_at").To(&tmp.UpdatedAt).
		Select("a.authorization_id").To(&tmp.AuthorizationID).
		Select("a.secret").To(&tmp.Secret).
		Select("a.valid_until").To(&tmp.AuthValidUntil).
		Select("a.logout_at").To(&tmp.LogoutAt).
		Select("a.created_at").To(&tmp.AuthCreatedAt).
		Select("a.os").To(&tmp.OS).
		Select("a.browser").To(&tmp.Browser).
		Select("a.device_model").To(&tmp.Model).
		Select("a.ip_address").To(&tmp.IPAddress)

	var fetched []userWithAuthRow

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		fetched = append(fetched, tmp)
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}

	return rowsToDomain(fetched), nil
}

func (s *PostgresStorage) getOne(ctx context.Context, whereClause string, whereArgs ...any) (*auth.User, error) {
	users, err := s.get(ctx, whereClause, whereArgs...)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, auth.ErrUserNotFound
	}
	s.base.MarkSeen(users[0].UserID, users[0])
	return users[0], nil
}

func (s *PostgresStorage) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getOne(ctx, "u.email = ?", email)
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID string) (*auth.User, error) {
	return s.getOne(ctx, "u.user_id = ?", userID)
}

// GetByAuthSecret looks the owner up by refresh secret; the whole set of the
// user's authorizations is loaded, not just the matching one.
func (s *PostgresStorage) GetByAuthSecret(ctx context.Context, secret string) (*auth.User, error) {
	return s.getOne(ctx, "u.user_id = (SELECT user_id FROM authorizations WHERE secret = ?)", secret)
}

func (s *PostgresStorage) Persist(ctx context.Context, u *auth.User) error {
	users, err := s.get(ctx, "u.user_id = ?", u.UserID)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("can't persist auth data: %w", auth.ErrUserNotFound)
	}
	dbState := users[0]

	if changes, _ := diff.Diff(dbState, u); len(changes) != 0 {
		q := sqlf.Update("users").Where("user_id = ?", u.UserID)
		q = pgutil.MakeUpdateQuery(q, changes).Set("updated_at", time.Now().UTC())

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, auth.ErrUserNotFound); err != nil {
			return err
		}
	}

	dbAuthSet := make(map[string]*auth.Authorization)
	for _, a := range dbState.Authorizations {
		dbAuthSet[a.ID] = a
	}

	for _, a := range u.Authorizations {
		stored, ok := dbAuthSet[a.ID]
		if !ok {
			if err := s.addAuth(ctx, u.UserID, a); err != nil {
				return err
			}
			continue
		}
		if err := s.persistAuth(ctx, stored, a); err != nil {
			return err
		}
	}

	s.base.MarkSeen(u.UserID, u)
	return nil
}

// persistAuth only ever closes an authorization, nothing else about it changes.
func (s *PostgresStorage) persistAuth(ctx context.Context, source, changed *auth.Authorization) error {
	if source.LogoutAt != nil || changed.LogoutAt == nil {
		return nil
	}

	q := sqlf.Update("authorizations").
		Set("logout_at", *changed.LogoutAt).
		Where("authorization_id = ?", source.ID)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}

type userWithAuthRow struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	AuthorizationID *string
	Secret          *string
	LogoutAt        *time.Time
	AuthCreatedAt   *time.Time
	AuthValidUntil  *time.Time

	IPAddress *string
	Browser   *string
	OS        *string
	Model     *string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rowsToDomain(rows []userWithAuthRow) []*auth.User {
	var order []string
	usersMap := make(map[string]*auth.User)

	for _, row := range rows {
		if _, ok := usersMap[row.UserID]; !ok {
			order = append(order, row.UserID)
			usersMap[row.UserID] = &auth.User{
				UserID:         row.UserID,
				Username:       row.Username,
				Email:          row.Email,
				PasswordHash:   row.PasswordHash,
				CreatedAt:      row.CreatedAt,
				UpdatedAt:      row.UpdatedAt,
				Authorizations: make([]*auth.Authorization, 0),
			}
		}
		if row.AuthorizationID != nil {
			a := &auth.Authorization{
				ID:         *row.AuthorizationID,
				Secret:     deref(row.Secret),
				CreatedAt:  *row.AuthCreatedAt,
				ValidUntil: *row.AuthValidUntil,
				LogoutAt:   row.LogoutAt,
				Device: auth.Device{
					Browser:   deref(row.Browser),
					OS:        deref(row.OS),
					IPAddress: deref(row.IPAddress),
					Model:     deref(row.Model),
				},
			}
			usersMap[row.UserID].Authorizations = append(usersMap[row.UserID].Authorizations, a)
		}
	}

	users := make([]*auth.User, 0, len(order))
	for _, id := range order {
		users = append(users, usersMap[id])
	}
	return users
}
