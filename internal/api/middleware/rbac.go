package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// RBAC enforces role-based access control.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return Guard(func(user *domain.User) error {
		if !user.HasRole(allowedRoles...) {
			return domain.ErrForbidden
		}
		return nil
	})
}
