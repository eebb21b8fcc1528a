package auth

import (
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/domain"
	"time"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrAuthorizationExists = errors.New("authorization already exists")
	ErrUserEmailDuplicate  = fmt.Errorf("%w: email is not unique", ErrUserExists)
	ErrInvalidCredentials  = errors.New("email or password is invalid")
	ErrUnauthorized        = errors.New("unauthorized")
)

const (
	EventCreated  = "user.created"
	EventNewLogin = "user.login"
	EventLogout   = "user.logout"
)

type Authorizer interface {
	Hash(password string) string
	Authorize(u *User, password string, dev Device) (*Authorization, error)
}

type Device struct {
	Browser   string
	OS        string
	IPAddress string
	Model     string
}

type Authorization struct {
	ID         string
	Secret     string
	CreatedAt  time.Time
	ValidUntil time.Time
	LogoutAt   *time.Time
	Device     Device
}

func (a *Authorization) IsActive() bool {
	return time.Now().Before(a.ValidUntil) && a.LogoutAt == nil
}

type User struct {
	domain.Aggregate `diff:"-"`
	UserID           string           `diff:"-"`
	Username         string           `diff:"username"`
	Email            string           `diff:"email"`
	PasswordHash     string           `diff:"password_hash"`
	CreatedAt        time.Time        `diff:"-"`
	UpdatedAt        time.Time        `diff:"-"`
	Authorizations   []*Authorization `diff:"-"`
}

func (u *User) GetAuthByID(authID string) *Authorization {
	for _, a := range u.Authorizations {
		if a.ID == authID {
			return a
		}
	}
	return nil
}

func (u *User) GetAuthBySecret(secret string) *Authorization {
	for _, a := range u.Authorizations {
		if a.Secret == secret {
			return a
		}
	}
	return nil
}

func NewUser(
	userID string,
	username string,
	email string,
	password string,
	hasher Authorizer,
) *User {
	now := time.Now().UTC()
	u := &User{
		UserID:       userID,
		Username:     username,
		Email:        email,
		PasswordHash: hasher.Hash(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.PushEvent(CreatedEvent{
		At:       u.CreatedAt,
		UserID:   u.UserID,
		Username: u.Username,
		Email:    u.Email,
	})
	return u
}

func (u *User) Authorize(a Authorizer, password string, dev Device) (*Authorization, error) {
	authorization, err := a.Authorize(u, password, dev)
	if err != nil {
		return nil, err
	}

	u.Authorizations = append(u.Authorizations, authorization)

	u.PushEvent(LoginEvent{
		At:     time.Now().UTC(),
		UserID: u.UserID,
		ID:     authorization.ID,
		Device: authorization.Device,
	})

	return authorization, nil
}

func (u *User) Logout(authID string) error {
	a := u.GetAuthByID(authID)

	if a == nil {
		return fmt.Errorf("%w: provided identifier not found", ErrUnauthorized)
	}

	if a.LogoutAt != nil {
		return fmt.Errorf("%w: authorization already closed", ErrUnauthorized)
	}

	now := time.Now().UTC()
	a.LogoutAt = &now

	u.PushEvent(LogoutEvent{
		At:     now,
		UserID: u.UserID,
		ID:     a.ID,
	})

	return nil
}

type CreatedEvent struct {
	At       time.Time
	UserID   string
	Username string
	Email    string
}

func (e CreatedEvent) Type() string {
	return EventCreated
}

func (e CreatedEvent) PublishedAt() time.Time {
	return e.At
}

type LoginEvent struct {
	At     time.Time
	UserID string
	ID     string
	Device Device
}

func (e LoginEvent) Type() string {
	return EventNewLogin
}

func (e LoginEvent) PublishedAt() time.Time {
	return e.At
}

type LogoutEvent struct {
	At     time.Time
	UserID string
	ID     string
}

func (e LogoutEvent) Type() string {
	return EventLogout
}

func (e LogoutEvent) PublishedAt() time.Time {
	return e.At
}
