package mw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"karaoke/internal/errors"
	"karaoke/internal/model"
)

// RequireRole lets a request through only when its session has one of roles.
// It must run after SessionAuth.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			desc := Session(c)
			if desc == nil || !allowed[desc.Role] {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: "forbidden",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
