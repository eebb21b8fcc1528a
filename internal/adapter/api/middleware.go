package api

import (
	"github.com/burenotti/healthtrack/internal/app/authapp"
	"github.com/labstack/echo/v4"
	"net/http"
	"strings"
)

const KeyCurrentUser = "current_user"

func LoginRequired(authorizer *authapp.Authorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || scheme != "Bearer" || token == "" {
				return JsonError(c, http.StatusUnauthorized, "No token, authorization denied")
			}

			user, err := authorizer.ValidateAccessToken(token)
			if err != nil {
				return JsonError(c, http.StatusUnauthorized, "Token is not valid")
			}

			c.Set(KeyCurrentUser, user)
			return next(c)
		}
	}
}

func currentUser(c echo.Context) *authapp.AccessTokenData {
	return c.Get(KeyCurrentUser).(*authapp.AccessTokenData)
}
