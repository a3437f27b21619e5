package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/api/middleware"
	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// ctxUser returns the user injected by the Auth middleware. Its absence means
// the route was mounted without the gate, which is reported as not logged in.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, domain.ErrNotLoggedIn
	}
	return user, nil
}

// origin returns the scheme://host prefix for links in outgoing email.
func origin(c echo.Context, publicURL string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	return c.Scheme() + "://" + c.Request().Host
}
