package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
)

const UserContextKey = "user"

// AuthCookieName is the cookie that carries the session token.
const AuthCookieName = "auth_token"

// Auth creates a middleware that protects routes requiring authentication.
func Auth(users domain.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusSeeOther, "/auth/login")
			}
			token := cookie.Value

			user, err := users.Authenticate(c.Request().Context(), token)
			if err != nil || user == nil {
				// Clear the invalid cookie before bouncing to login.
				c.SetCookie(&http.Cookie{
					Name:   AuthCookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
				return c.Redirect(http.StatusSeeOther, "/auth/login")
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}
