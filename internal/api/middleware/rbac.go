package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/cbtutils/novedades/internal/core/domain"
)

// RBAC admits requests whose token role is one of roles. It runs after Auth,
// which stores the role claim; every account on the board is issued
// domain.RoleAdmin, so in practice it rejects tokens minted without a role.
// A request that reaches RBAC with no claims at all was never authenticated
// and gets 401.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(KeyRole).(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token no proporcionado").SetInternal(domain.ErrUnauthenticated)
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "Acceso denegado").SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
