package view

import (
	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	html "maragu.dev/gomponents/html"
)

// Data is the view model for the profile panel. The handler flattens panel
// state into these fields so the templates stay free of domain types.
type Data struct {
	Mode string

	// Committed state, shown in display mode.
	Username  string
	Email     string
	AvatarURL string

	// Draft state, shown in edit and confirm-delete modes.
	DraftUsername     string
	DraftEmail        string
	PendingAvatarName string

	// In-flight and failure indicators.
	Submitting  bool
	Deleting    bool
	LoadError   string
	SubmitError string
	DeleteError string
}

// PanelID is the htmx swap target for every panel interaction.
const PanelID = "profile-panel"

// Panel renders the profile panel. Exactly one of the loading, display,
// editing, or confirm-delete views is visible at a time.
func Panel(d Data) gomponents.Node {
	var body gomponents.Node
	switch d.Mode {
	case "display":
		body = displayView(d)
	case "editing":
		body = editView(d, false)
	case "confirming-delete":
		body = editView(d, true)
	default:
		body = loadingView(d)
	}

	return html.Div(
		html.ID(PanelID),
		html.Class("max-w-lg mx-auto bg-white shadow rounded-lg p-6"),
		body,
	)
}

func loadingView(d Data) gomponents.Node {
	if d.LoadError != "" {
		return html.Div(
			html.Class("text-center py-8"),
			html.P(html.Class("text-red-600 mb-4"), gomponents.Text(d.LoadError)),
			html.Button(
				html.Class("px-4 py-2 bg-indigo-600 text-white rounded"),
				hx.Post("/app/profile/reload"),
				hx.Target("#"+PanelID),
				hx.Swap("outerHTML"),
				gomponents.Text("Retry"),
			),
		)
	}
	return html.Div(
		html.Class("text-center py-8 text-gray-400"),
		gomponents.Text("Loading profile..."),
	)
}

func displayView(d Data) gomponents.Node {
	return html.Div(
		html.Div(
			html.Class("flex items-center gap-4 mb-6"),
			avatarImage(d.AvatarURL),
			html.Div(
				html.H2(html.Class("text-2xl font-bold"), gomponents.Text(d.Username)),
				html.P(html.Class("text-gray-500"), gomponents.Text(d.Email)),
			),
		),
		html.Div(
			html.Class("flex gap-2"),
			html.Button(
				html.Class("px-4 py-2 bg-indigo-600 text-white rounded"),
				hx.Post("/app/profile/edit"),
				hx.Target("#"+PanelID),
				hx.Swap("outerHTML"),
				gomponents.Text("Edit profile"),
			),
			html.Button(
				html.Class("px-4 py-2 bg-gray-200 text-gray-800 rounded"),
				hx.Post("/app/profile/disconnect"),
				gomponents.Text("Disconnect"),
			),
		),
	)
}

func editView(d Data, confirmingDelete bool) gomponents.Node {
	return html.Div(
		html.FormEl(
			html.ID("profile-edit-form"),
			hx.Post("/app/profile/submit"),
			hx.Target("#"+PanelID),
			hx.Swap("outerHTML"),
			hx.Encoding("multipart/form-data"),
			html.Div(
				html.Class("mb-4"),
				html.Label(html.Class("block text-sm font-medium mb-1"), html.For("username"), gomponents.Text("Username")),
				html.Input(
					html.Class("w-full border rounded px-3 py-2"),
					html.Type("text"), html.ID("username"), html.Name("username"),
					html.Value(d.DraftUsername),
				),
			),
			html.Div(
				html.Class("mb-4"),
				html.Label(html.Class("block text-sm font-medium mb-1"), html.For("email"), gomponents.Text("Email")),
				html.Input(
					html.Class("w-full border rounded px-3 py-2"),
					html.Type("email"), html.ID("email"), html.Name("email"),
					html.Value(d.DraftEmail),
				),
			),
			html.Div(
				html.Class("mb-4"),
				html.Label(html.Class("block text-sm font-medium mb-1"), html.For("avatar"), gomponents.Text("Avatar")),
				html.Input(
					html.Class("w-full text-sm"),
					html.Type("file"), html.ID("avatar"), html.Name("avatar"), html.Accept("image/*"),
				),
				gomponents.If(d.PendingAvatarName != "",
					html.P(html.Class("text-xs text-gray-500 mt-1"), gomponents.Text("Selected: "+d.PendingAvatarName)),
				),
			),
			gomponents.If(d.SubmitError != "",
				html.P(html.Class("text-red-600 text-sm mb-4"), gomponents.Text(d.SubmitError)),
			),
			html.Div(
				html.Class("flex gap-2"),
				html.Button(
					html.Class("px-4 py-2 bg-indigo-600 text-white rounded"),
					html.Type("submit"),
					gomponents.If(d.Submitting, html.Disabled()),
					gomponents.Text("Save"),
				),
				html.Button(
					html.Class("px-4 py-2 bg-gray-200 text-gray-800 rounded"),
					html.Type("button"),
					hx.Post("/app/profile/cancel"),
					hx.Target("#"+PanelID),
					hx.Swap("outerHTML"),
					gomponents.Text("Cancel"),
				),
				html.Button(
					html.Class("px-4 py-2 bg-red-600 text-white rounded ml-auto"),
					html.Type("button"),
					hx.Post("/app/profile/delete/request"),
					hx.Target("#"+PanelID),
					hx.Swap("outerHTML"),
					gomponents.Text("Delete account"),
				),
			),
		),
		gomponents.If(confirmingDelete, confirmDeleteDialog(d)),
	)
}

// confirmDeleteDialog overlays the edit form; the drafted edits stay on
// screen behind it and survive a cancel.
func confirmDeleteDialog(d Data) gomponents.Node {
	return html.Div(
		html.Class("mt-6 border-t pt-4"),
		html.P(
			html.Class("text-red-700 font-semibold mb-2"),
			gomponents.Text("Delete this account permanently?"),
		),
		html.P(
			html.Class("text-sm text-gray-600 mb-4"),
			gomponents.Text("This cannot be undone. Your profile and avatar will be removed."),
		),
		gomponents.If(d.DeleteError != "",
			html.P(html.Class("text-red-600 text-sm mb-4"), gomponents.Text(d.DeleteError)),
		),
		html.Div(
			html.Class("flex gap-2"),
			html.Button(
				html.Class("px-4 py-2 bg-red-600 text-white rounded"),
				hx.Post("/app/profile/delete/confirm"),
				hx.Target("#"+PanelID),
				hx.Swap("outerHTML"),
				gomponents.If(d.Deleting, html.Disabled()),
				gomponents.Text("Yes, delete my account"),
			),
			html.Button(
				html.Class("px-4 py-2 bg-gray-200 text-gray-800 rounded"),
				hx.Post("/app/profile/delete/cancel"),
				hx.Target("#"+PanelID),
				hx.Swap("outerHTML"),
				gomponents.Text("Keep my account"),
			),
		),
	)
}

func avatarImage(url string) gomponents.Node {
	if url == "" {
		return html.Div(
			html.Class("w-16 h-16 rounded-full bg-gray-200 flex items-center justify-center text-gray-400"),
			gomponents.Text("?"),
		)
	}
	return html.Img(
		html.Class("w-16 h-16 rounded-full object-cover"),
		html.Src(url),
		html.Alt("avatar"),
	)
}
