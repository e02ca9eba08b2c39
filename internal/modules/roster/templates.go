package roster

import (
	"bytes"

	"maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"
)

// ListID is the swap target for roster pushes over the websocket.
const ListID = "user-roster"

// UserList renders the roster. When oob is set the fragment carries an
// out-of-band swap attribute so the htmx websocket extension replaces the
// list in place.
func UserList(entries []Entry, oob bool) gomponents.Node {
	items := make([]gomponents.Node, 0, len(entries))
	for _, e := range entries {
		items = append(items, userItem(e))
	}
	return Ul(
		ID(ListID),
		Class("divide-y divide-gray-100"),
		gomponents.If(oob, hx.SwapOOB("outerHTML")),
		gomponents.If(len(entries) == 0,
			Li(Class("py-3 text-gray-400"), gomponents.Text("No users yet.")),
		),
		gomponents.Group(items),
	)
}

func userItem(e Entry) gomponents.Node {
	avatar := Div(
		Class("w-8 h-8 rounded-full bg-gray-200 flex items-center justify-center text-gray-400 text-xs"),
		gomponents.Text("?"),
	)
	if e.Avatar != "" {
		avatar = Div(
			Img(Class("w-8 h-8 rounded-full object-cover"), Src(e.Avatar), Alt(e.Username)),
		)
	}
	return Li(
		Class("py-3 flex items-center gap-3"),
		avatar,
		Span(Class("text-sm font-medium"), gomponents.Text(e.Username)),
	)
}

// renderList serializes the roster fragment for a websocket push.
func renderList(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := UserList(entries, true).Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
