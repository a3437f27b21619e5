package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/api/metrics"
	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// Predicate decides whether the authenticated user may proceed. A non-nil
// error is returned to the client as is.
type Predicate func(user *domain.User) error

// Guard rejects requests whose user does not satisfy pred. It must run after
// Auth.
func Guard(pred Predicate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return domain.ErrNotLoggedIn
			}
			if err := pred(user); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// ActiveAccount rejects deactivated accounts.
func ActiveAccount() echo.MiddlewareFunc {
	return Guard(func(user *domain.User) error {
		if !user.IsActive() {
			metrics.SessionRejectionsTotal.WithLabelValues("inactive").Inc()
			return domain.ErrAccountInactive
		}
		return nil
	})
}
