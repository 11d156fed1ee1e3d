package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Success: false, Message: msg})
}

// failWith maps known domain errors to their status codes. Anything else is
// logged and answered with msg and a 500, without internal detail.
func failWith(c echo.Context, log zerolog.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return fail(c, http.StatusUnauthorized, "user not found")
	case errors.Is(err, domain.ErrWrongPassword):
		return fail(c, http.StatusUnauthorized, "wrong password")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrMissingUserID):
		return fail(c, http.StatusBadRequest, "user id missing")
	case errors.Is(err, domain.ErrUnknownOwner):
		return fail(c, http.StatusBadRequest, "unknown user")
	case errors.Is(err, domain.ErrRequestInFlight):
		return fail(c, http.StatusConflict, "request already in progress")
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")

	return fail(c, http.StatusInternalServerError, msg)
}
