package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
)

// BearerAuth protects JSON API routes. Unlike Auth it never redirects; API
// clients get a plain 401 they can classify.
func BearerAuth(users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			user, err := users.Authenticate(c.Request().Context(), token)
			if err != nil || user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}
