package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/api/metrics"
	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "jwt"

const (
	userKey    = "user"
	sessionKey = "session"
)

// Authenticator resolves a session token into its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *ports.SessionInfo, error)
}

// Auth verifies the session token from the Authorization header or the
// session cookie and stores the user and session in the context.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, session, err := authn.Authenticate(c.Request().Context(), tokenFromRequest(c))
			if err != nil {
				metrics.SessionRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(userKey, user)
			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// CurrentUser returns the user stored by Auth, or nil.
func CurrentUser(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}

// CurrentSession returns the session stored by Auth, or nil.
func CurrentSession(c echo.Context) *ports.SessionInfo {
	s, _ := c.Get(sessionKey).(*ports.SessionInfo)
	return s
}

// SetCurrentUser stores user in the context.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}

func tokenFromRequest(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrSessionUserGone):
		return "user_gone"
	case errors.Is(err, domain.ErrPasswordChanged):
		return "password_changed"
	default:
		return "error"
	}
}
