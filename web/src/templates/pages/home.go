package pages

import (
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// Home renders the landing page for a signed-in user.
func Home(username string) gomponents.Node {
	return Div(
		Class("max-w-lg mx-auto bg-white shadow rounded-lg p-8 text-center"),
		H1(Class("text-3xl font-extrabold text-indigo-700 mb-4"), gomponents.Text("Welcome, "+username)),
		P(
			Class("text-gray-600 mb-6"),
			gomponents.Text("Manage your profile or see who else is here."),
		),
		Div(
			Class("flex justify-center gap-3"),
			A(
				Href("/app/profile"),
				Class("px-4 py-2 bg-indigo-600 text-white rounded"),
				gomponents.Text("My profile"),
			),
			A(
				Href("/app/users"),
				Class("px-4 py-2 bg-gray-200 text-gray-800 rounded"),
				gomponents.Text("Users"),
			),
		),
	)
}
