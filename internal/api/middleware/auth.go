package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// CallerKey is the echo context key holding the verified domain.Caller.
const CallerKey = "caller"

// Auth verifies the bearer token and injects the caller into context.
// A missing token yields domain.ErrMissingToken, a token that fails
// verification domain.ErrInvalidToken.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return domain.ErrMissingToken
			}

			caller, err := tokens.Verify(raw)
			if err != nil {
				return domain.ErrInvalidToken
			}

			c.Set(CallerKey, *caller)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
