package mw

import (
	"log"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"karaoke/internal/errors"
	"karaoke/internal/service"
)

// SessionKey is the echo context key holding the *service.SessionDescriptor.
const SessionKey = "session"

// SessionAuth validates the bearer token of every request through the auth
// service, so table leases are checked on each call.
func SessionAuth(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  SessionKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Validate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "missing or malformed session token",
					Code:  "UNAUTHORIZED",
				})
			}
			httpErr := errors.MapErrorToHTTP(err)
			if httpErr.StatusCode == http.StatusInternalServerError {
				log.Printf("%s %s: session check: %v", c.Request().Method, c.Path(), err)
			}
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// Session returns the session stored by SessionAuth, or nil.
func Session(c echo.Context) *service.SessionDescriptor {
	desc, _ := c.Get(SessionKey).(*service.SessionDescriptor)
	return desc
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
