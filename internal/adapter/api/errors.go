package api

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
)

const msgServerError = "Server error"

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

type MessageResponse struct {
	Message string `json:"message"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorModel struct {
	Errors []FieldError `json:"errors"`
}

// ValidationError is returned by bind when the payload breaks one or more field rules.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d invalid field(s)", len(e.Fields))
}

func (s *Server) badRequest(c echo.Context, err error) error {
	if verr, ok := err.(*ValidationError); ok {
		return c.JSON(http.StatusBadRequest, ValidationErrorModel{Errors: verr.Fields})
	}
	return JsonError(c, http.StatusBadRequest, err)
}

// internalError logs err with request context and answers without any detail.
func (s *Server) internalError(c echo.Context, err error) error {
	s.logger.ErrorContext(c.Request().Context(), "request failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	return JsonError(c, http.StatusInternalServerError, msgServerError)
}
