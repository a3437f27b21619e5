package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/onboarding-api/internal/api/handler"
	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// domainErrors maps domain sentinels to HTTP status codes. The sentinel's own
// text is the client-facing message.
var domainErrors = []struct {
	err  error
	code int
}{
	{domain.ErrPasswordMismatch, http.StatusBadRequest},
	{domain.ErrEmailTaken, http.StatusBadRequest},
	{domain.ErrMissingCredentials, http.StatusBadRequest},
	{domain.ErrPasswordUpdateNotAllowed, http.StatusBadRequest},
	{domain.ErrResetTokenInvalid, http.StatusBadRequest},
	{domain.ErrVerificationTokenInvalid, http.StatusBadRequest},
	{domain.ErrInvalidStatusTransition, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidPhoto, http.StatusBadRequest},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrNotLoggedIn, http.StatusUnauthorized},
	{domain.ErrTokenInvalid, http.StatusUnauthorized},
	{domain.ErrTokenExpired, http.StatusUnauthorized},
	{domain.ErrSessionUserGone, http.StatusUnauthorized},
	{domain.ErrPasswordChanged, http.StatusUnauthorized},
	{domain.ErrWrongCurrentPassword, http.StatusUnauthorized},

	{domain.ErrAccountInactive, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrNoUserWithEmail, http.StatusNotFound},

	{domain.ErrMailDispatch, http.StatusInternalServerError},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"status": "error", "error": "<message>"}.
//
// With debug set, the underlying error text is added as "detail".
func NewHTTPErrorHandler(log zerolog.Logger, debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		resp := handler.ErrorResponse{Status: "error", Error: msg}
		if debug {
			resp.Detail = err.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, body limit, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Malformed ids carry the offending id in the message.
	if errors.Is(err, domain.ErrInvalidID) {
		return http.StatusNotFound, err.Error()
	}

	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			if de.code >= http.StatusInternalServerError {
				logUnhandled(log, err, c)
			}
			return de.code, de.err.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	logUnhandled(log, err, c)
	return http.StatusInternalServerError, "internal server error"
}

func logUnhandled(log zerolog.Logger, err error, c echo.Context) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
