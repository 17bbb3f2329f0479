package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/employee-portal/employee-api/internal/api/middleware"
	"github.com/employee-portal/employee-api/internal/core/domain"
)

// ctxCaller extracts the caller injected by the Auth middleware. A missing
// caller means the route was mounted without Auth; treat it as anonymous.
func ctxCaller(c echo.Context) (domain.Caller, error) {
	caller, ok := c.Get(middleware.CallerKey).(domain.Caller)
	if !ok || caller.UserID == "" {
		return domain.Caller{}, domain.ErrMissingToken
	}
	return caller, nil
}
