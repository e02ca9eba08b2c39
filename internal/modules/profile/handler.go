package profile

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/modules/profile/view"
	"github.com/palaver-chat/palaver/internal/session"
	gview "github.com/palaver-chat/palaver/internal/view"
	"github.com/palaver-chat/palaver/web/src/templates/layouts"
)

// Handler serves the htmx profile panel. Every mutation returns the
// re-rendered panel as the swap target; the panel itself lives in the
// PanelStore between requests.
type Handler struct {
	panels   *PanelStore
	sessions *session.Service
	logger   *slog.Logger
}

// NewHandler creates the panel handler.
func NewHandler(panels *PanelStore, sessions *session.Service) *Handler {
	return &Handler{
		panels:   panels,
		sessions: sessions,
		logger:   slog.Default().With("component", "profile-handler"),
	}
}

// RegisterRoutes mounts the panel routes. The group must carry cookie
// authentication.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Page)
	g.POST("/reload", h.Reload)
	g.POST("/edit", h.Edit)
	g.POST("/cancel", h.Cancel)
	g.POST("/submit", h.Submit)
	g.POST("/delete/request", h.DeleteRequest)
	g.POST("/delete/cancel", h.DeleteCancel)
	g.POST("/delete/confirm", h.DeleteConfirm)
	g.POST("/disconnect", h.Disconnect)
}

// panelFor resolves the request's panel, syncing the session service with
// the cookie token when the process has no session yet (e.g. after a
// restart).
func (h *Handler) panelFor(c echo.Context) (*Panel, string) {
	user := c.Get(middleware.UserContextKey).(*domain.User)
	userID := user.ID.String()

	if h.sessions.Handle(userID).Token() == "" {
		if cookie, err := c.Cookie(middleware.AuthCookieName); err == nil {
			h.sessions.Establish(userID, cookie.Value)
		}
	}
	return h.panels.Get(userID), userID
}

// Page renders the full profile page.
func (h *Handler) Page(c echo.Context) error {
	panel, _ := h.panelFor(c)
	if panel.Mode() == ModeLoading {
		// Errors surface through the panel's status; the page still renders.
		_ = panel.Load(c.Request().Context())
	}

	flash := gview.GetFlashData(c)
	page := layouts.Base("Profile", flash, view.Panel(h.buildData(panel)))
	return gview.RenderPage(c, http.StatusOK, page)
}

// Reload retries a failed profile load.
func (h *Handler) Reload(c echo.Context) error {
	panel, _ := h.panelFor(c)
	if panel.Mode() == ModeLoading {
		_ = panel.Load(c.Request().Context())
	}
	return h.renderPanel(c, panel)
}

// Edit switches the panel into edit mode.
func (h *Handler) Edit(c echo.Context) error {
	panel, _ := h.panelFor(c)
	panel.BeginEdit()
	return h.renderPanel(c, panel)
}

// Cancel abandons the draft and returns to display mode.
func (h *Handler) Cancel(c echo.Context) error {
	panel, _ := h.panelFor(c)
	panel.CancelEdit()
	return h.renderPanel(c, panel)
}

// Submit applies the form fields to the draft and sends it to the server.
// On success the rotated session token replaces the auth cookie.
func (h *Handler) Submit(c echo.Context) error {
	panel, userID := h.panelFor(c)

	if err := panel.UpdateDraftField("username", c.FormValue("username")); err != nil {
		return h.renderPanel(c, panel)
	}
	_ = panel.UpdateDraftField("email", c.FormValue("email"))

	if avatar, err := c.FormFile("avatar"); err == nil && avatar != nil && avatar.Size > 0 {
		src, err := avatar.Open()
		if err == nil {
			content, readErr := io.ReadAll(src)
			src.Close()
			if readErr == nil {
				panel.SelectAvatarFile(avatar.Filename, content)
			}
		}
	}

	if err := panel.SubmitEdit(c.Request().Context()); err == nil {
		if token := h.sessions.Handle(userID).Token(); token != "" {
			setAuthCookie(c, token)
		}
	}
	return h.renderPanel(c, panel)
}

// DeleteRequest asks for confirmation before deleting the account.
func (h *Handler) DeleteRequest(c echo.Context) error {
	panel, _ := h.panelFor(c)
	panel.RequestDelete()
	return h.renderPanel(c, panel)
}

// DeleteCancel dismisses the confirmation and returns to the edit form.
func (h *Handler) DeleteCancel(c echo.Context) error {
	panel, _ := h.panelFor(c)
	panel.CancelDelete()
	return h.renderPanel(c, panel)
}

// DeleteConfirm permanently deletes the account and sends the browser to
// the login page.
func (h *Handler) DeleteConfirm(c echo.Context) error {
	panel, userID := h.panelFor(c)
	if err := panel.ConfirmDelete(c.Request().Context()); err != nil {
		return h.renderPanel(c, panel)
	}

	h.panels.Remove(userID)
	clearAuthCookie(c)
	gview.SetFlashSuccess(c, "Your account has been deleted.")
	c.Response().Header().Set("HX-Redirect", "/auth/login")
	return c.NoContent(http.StatusOK)
}

// Disconnect logs the user out without touching the account.
func (h *Handler) Disconnect(c echo.Context) error {
	panel, userID := h.panelFor(c)
	panel.Disconnect()

	h.panels.Remove(userID)
	clearAuthCookie(c)
	c.Response().Header().Set("HX-Redirect", "/auth/login")
	return c.NoContent(http.StatusOK)
}

func (h *Handler) renderPanel(c echo.Context, panel *Panel) error {
	return gview.RenderPartial(c, view.Panel(h.buildData(panel)))
}

// buildData flattens the panel into the view model.
func (h *Handler) buildData(panel *Panel) view.Data {
	d := view.Data{Mode: panel.Mode().String()}

	if committed := panel.Committed(); committed != nil {
		d.Username = committed.Username
		d.Email = committed.Email
		d.AvatarURL = committed.Avatar
	}
	if draft := panel.CurrentDraft(); draft != nil {
		d.DraftUsername = draft.Username
		d.DraftEmail = draft.Email
	}
	d.PendingAvatarName = panel.PendingAvatarName()

	if s := panel.LoadStatus(); s.Status == StatusFailed {
		d.LoadError = reasonMessage(s.Reason)
	}
	if s := panel.SubmitStatus(); s.Status == StatusFailed {
		d.SubmitError = reasonMessage(s.Reason)
	} else if s.Status == StatusPending {
		d.Submitting = true
	}
	if s := panel.DeleteStatus(); s.Status == StatusFailed {
		d.DeleteError = reasonMessage(s.Reason)
	} else if s.Status == StatusPending {
		d.Deleting = true
	}
	return d
}

// reasonMessage maps a failure class to user-facing text.
func reasonMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNetworkUnavailable):
		return "Could not reach the server. Check your connection and try again."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, domain.ErrValidationRejected):
		return "Some fields are invalid. Please review them and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

func setAuthCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
