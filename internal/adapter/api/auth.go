package api

import (
	"errors"
	"github.com/burenotti/healthtrack/internal/app/authapp"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain/auth"
	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"net/http"
	"time"
)

func (s *Server) MountAuth(api *echo.Group) {
	loginRequired := LoginRequired(s.authService.Authorizer)

	authRoutes := api.Group("/auth")

	authRoutes.POST("/register", s.Register)
	authRoutes.POST("/login", s.Login)
	authRoutes.POST("/refresh", s.Refresh)
	authRoutes.POST("/logout", s.Logout, loginRequired)
	authRoutes.GET("/me", s.Me, loginRequired)
}

func (s *Server) getAuthUoW() *unitofwork.UnitOfWork[*authapp.AtomicContext] {
	return unitofwork.New[*authapp.AtomicContext](
		s.db,
		authapp.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUser(u *auth.User) *User {
	return &User{
		ID:        u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

func (s *Server) Register(c echo.Context) error {
	var req RegisterRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}

	u, err := s.authService.CreateUser(c.Request().Context(), s.getAuthUoW(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return JsonError(c, http.StatusBadRequest, "User already exists")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		User:    toUser(u),
	})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

func (s *Server) Login(c echo.Context) error {
	var req LoginRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}

	agent := useragent.Parse(c.Request().UserAgent())
	device := auth.Device{
		Browser:   agent.Name,
		OS:        agent.OS,
		IPAddress: c.RealIP(),
		Model:     agent.Device,
	}

	u, tokens, err := s.authService.Login(c.Request().Context(), s.getAuthUoW(), device, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return JsonError(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         toUser(u),
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}

	tokens, err := s.authService.Refresh(c.Request().Context(), s.getAuthUoW(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, authapp.ErrInvalidAuthorization) {
			return JsonError(c, http.StatusUnauthorized, "Refresh token is not valid")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, RefreshResponse{
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (s *Server) Logout(c echo.Context) error {
	user := currentUser(c)

	if err := s.authService.Logout(c.Request().Context(), s.getAuthUoW(), user.UserID, user.Authorization); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) || errors.Is(err, auth.ErrUserNotFound) {
			return JsonError(c, http.StatusUnauthorized, "Unauthorized")
		}
		return s.internalError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) Me(c echo.Context) error {
	u, err := s.authService.CurrentUser(c.Request().Context(), s.getAuthUoW(), currentUser(c))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return JsonError(c, http.StatusUnauthorized, "Unauthorized")
		}
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}
