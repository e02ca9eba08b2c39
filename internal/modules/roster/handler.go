package roster

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	gview "github.com/palaver-chat/palaver/internal/view"
	"github.com/palaver-chat/palaver/web/src/templates/layouts"
)

// Handler renders the user list page.
type Handler struct {
	roster *Roster
}

// NewHandler creates the roster page handler.
func NewHandler(roster *Roster) *Handler {
	return &Handler{roster: roster}
}

// Get renders the user list. The page opens a websocket so later roster
// pushes swap the list without a reload.
func (h *Handler) Get(c echo.Context) error {
	content := Div(
		Class("max-w-lg mx-auto bg-white shadow rounded-lg p-6"),
		gomponents.Attr("hx-ext", "ws"),
		gomponents.Attr("ws-connect", "/ws"),
		H2(Class("text-xl font-bold mb-4"), gomponents.Text("Users")),
		UserList(h.roster.Entries(), false),
	)

	flash := gview.GetFlashData(c)
	return gview.RenderPage(c, http.StatusOK, layouts.Base("Users", flash, content))
}
