package authapp

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain/auth"
	"github.com/google/uuid"
	"log/slog"
)

var (
	ErrInvalidAuthorization = errors.New("invalid authorization")
)

type Service struct {
	logger     *slog.Logger
	Authorizer *Authorizer
}

func NewService(authorizer *Authorizer, logger *slog.Logger) *Service {
	return &Service{
		logger:     logger,
		Authorizer: authorizer,
	}
}

func (s *Service) CreateUser(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	username string,
	email string,
	password string,
) (u *auth.User, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u = auth.NewUser(uuid.NewString(), username, email, password, s.Authorizer)
		if err := ctx.UserStorage.Add(ctx.Context(), u); err != nil {
			return err
		}

		return ctx.Commit()
	})
	if err != nil {
		u = nil
	}
	return
}

// Login opens a new authorization for the device. An unknown email is
// reported the same way as a wrong password.
func (s *Service) Login(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	device auth.Device,
	email string,
	password string,
) (u *auth.User, tokens Tokens, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		u, err = ctx.UserStorage.GetByEmail(ctx.Context(), email)
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}

		a, err := u.Authorize(s.Authorizer, password, device)
		if err != nil {
			return err
		}

		accessToken, err := s.Authorizer.GenerateAccessToken(u, a)
		if err != nil {
			return err
		}

		if err := ctx.UserStorage.Persist(ctx.Context(), u); err != nil {
			return err
		}

		tokens = Tokens{
			AccessToken:  accessToken,
			RefreshToken: a.Secret,
		}
		return ctx.Commit()
	})
	if err != nil {
		u = nil
	}
	return
}

func (s *Service) Logout(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	authID string,
) error {
	return uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByID(ctx.Context(), userID)
		if err != nil {
			return err
		}

		if err := u.Logout(authID); err != nil {
			return err
		}

		if err := ctx.UserStorage.Persist(ctx.Context(), u); err != nil {
			return err
		}

		return ctx.Commit()
	})
}

func (s *Service) Refresh(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	secret string,
) (tokens Tokens, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.UserStorage.GetByAuthSecret(ctx.Context(), secret)
		if errors.Is(err, auth.ErrUserNotFound) {
			return ErrInvalidAuthorization
		}
		if err != nil {
			return err
		}

		a := u.GetAuthBySecret(secret)
		if a == nil || !a.IsActive() {
			return fmt.Errorf("%w: authorization is not active", ErrInvalidAuthorization)
		}

		if tokens.AccessToken, err = s.Authorizer.GenerateAccessToken(u, a); err != nil {
			return err
		}
		tokens.RefreshToken = a.Secret

		return ctx.Commit()
	})
	return
}

// CurrentUser resolves the user behind an access token and checks that the
// token's authorization is still open.
func (s *Service) CurrentUser(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	data *AccessTokenData,
) (u *auth.User, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		var err error
		u, err = ctx.UserStorage.GetByID(ctx.Context(), data.UserID)
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.ErrUnauthorized
		}
		if err != nil {
			return err
		}

		if a := u.GetAuthByID(data.Authorization); a == nil || !a.IsActive() {
			return fmt.Errorf("%w: authorization is closed", auth.ErrUnauthorized)
		}

		return ctx.Commit()
	})
	if err != nil {
		u = nil
	}
	return
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}
