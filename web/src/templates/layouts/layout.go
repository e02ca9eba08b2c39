package layouts

import (
	"maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"

	"github.com/palaver-chat/palaver/internal/view"
)

// CalculateTitle handles the conditional logic for the page title.
func CalculateTitle(title string) string {
	if title != "" {
		return title + " - Palaver"
	}
	return "Palaver"
}

// Base wraps page content in the application shell: head, scripts, nav and
// flash messages.
func Base(title string, flash view.FlashData, content gomponents.Node) gomponents.Node {
	return html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(CalculateTitle(title))),
			html.Script(html.Src("https://unpkg.com/htmx.org@1.9.12")),
			html.Script(html.Src("https://unpkg.com/htmx.org@1.9.12/dist/ext/ws.js")),
			html.Script(html.Src("https://cdn.tailwindcss.com")),
		),
		html.Body(
			html.Class("bg-gray-100 min-h-screen"),
			nav(),
			flashMessages(flash),
			html.Main(html.Class("py-8 px-4"), content),
		),
	)
}

func nav() gomponents.Node {
	return html.Nav(
		html.Class("bg-white shadow px-4 py-3 flex items-center gap-6"),
		html.A(html.Href("/"), html.Class("font-bold text-indigo-700"), gomponents.Text("Palaver")),
		html.A(html.Href("/app/profile"), html.Class("text-gray-600 hover:text-gray-900"), gomponents.Text("Profile")),
		html.A(html.Href("/app/users"), html.Class("text-gray-600 hover:text-gray-900"), gomponents.Text("Users")),
		html.A(html.Href("/auth/logout"), html.Class("ml-auto text-gray-600 hover:text-gray-900"), gomponents.Text("Log out")),
	)
}

func flashMessages(flash view.FlashData) gomponents.Node {
	if len(flash.Success) == 0 && len(flash.Error) == 0 {
		return nil
	}
	nodes := make([]gomponents.Node, 0, len(flash.Success)+len(flash.Error))
	for _, msg := range flash.Success {
		nodes = append(nodes, html.Div(
			html.Class("bg-green-100 text-green-800 px-4 py-2 rounded mb-2"),
			gomponents.Text(msg),
		))
	}
	for _, msg := range flash.Error {
		nodes = append(nodes, html.Div(
			html.Class("bg-red-100 text-red-800 px-4 py-2 rounded mb-2"),
			gomponents.Text(msg),
		))
	}
	return html.Div(html.Class("max-w-lg mx-auto mt-4 px-4"), gomponents.Group(nodes))
}
