package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/view"
	"github.com/palaver-chat/palaver/web/src/templates/layouts"
	"github.com/palaver-chat/palaver/web/src/templates/pages"
)

// HomeHandler renders the landing page.
type HomeHandler struct{}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// Get renders the home page for the signed-in user.
func (h *HomeHandler) Get(c echo.Context) error {
	user, ok := c.Get(middleware.UserContextKey).(*domain.User)
	if !ok || user == nil {
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	page := layouts.Base("Home", view.GetFlashData(c), pages.Home(user.Username))
	return view.RenderPage(c, http.StatusOK, page)
}
