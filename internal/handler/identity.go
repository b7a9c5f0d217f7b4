package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"landrecords/internal/auth"
	"landrecords/internal/errors"
	"landrecords/internal/logger"
	"landrecords/internal/policy"
	"landrecords/internal/service"
)

const (
	// ClaimsKey is where the JWT middleware stores validated claims.
	ClaimsKey = "user"
	callerKey = "caller"
)

// ParseAccessToken adapts JWTService for echo-jwt's ParseTokenFunc.
func ParseAccessToken(jwtService *auth.JWTService) func(c echo.Context, token string) (interface{}, error) {
	return func(c echo.Context, token string) (interface{}, error) {
		return jwtService.ValidateAccessToken(token)
	}
}

// Unauthorized renders echo-jwt failures in the common error shape.
func Unauthorized(c echo.Context, err error) error {
	return fail(errors.ErrUnauthorized)
}

// Identity resolves validated claims into a policy.Caller. It runs after the
// JWT middleware and rejects revoked tokens and missing or inactive users.
func Identity(authService service.AuthService, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*auth.Claims)
			if !ok {
				return fail(errors.ErrUnauthorized)
			}
			caller, err := authService.Authenticate(c.Request().Context(), claims)
			if err != nil {
				return fail(err)
			}
			c.Set(callerKey, caller)

			ctx := log.WithUserID(c.Request().Context(), caller.UserID.String())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// CallerFrom returns the caller set by Identity.
func CallerFrom(c echo.Context) policy.Caller {
	caller, _ := c.Get(callerKey).(policy.Caller)
	return caller
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
