package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/employee-portal/employee-api/internal/infrastructure/metrics"
	"github.com/employee-portal/employee-api/internal/core/domain"
)

// RBAC lets through only callers whose role is listed. It must run after
// Auth; rejected callers get domain.ErrAdminOnly.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, _ := c.Get(CallerKey).(domain.Caller)
			if _, ok := allowed[caller.Role]; !ok {
				metrics.AccessDeniedTotal.WithLabelValues("admin_only").Inc()
				return domain.ErrAdminOnly
			}
			return next(c)
		}
	}
}
