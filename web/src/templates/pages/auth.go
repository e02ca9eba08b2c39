package pages

import (
	"maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/palaver-chat/palaver/internal/view/dto/auth"
)

// Login renders the login form.
func Login(data auth.LoginData) gomponents.Node {
	return authCard("Log in",
		FormEl(
			Method("post"), Action("/auth/login"),
			textField("email", "Email", "email", data.Email),
			passwordField("password", "Password"),
			submitButton("Log in"),
		),
		P(
			Class("text-sm text-gray-500 mt-4"),
			gomponents.Text("No account yet? "),
			A(Href("/auth/register"), Class("text-indigo-600"), gomponents.Text("Register")),
			gomponents.Text(" · "),
			A(Href("/auth/forgot-password"), Class("text-indigo-600"), gomponents.Text("Forgot password?")),
		),
	)
}

// Register renders the registration form.
func Register(data auth.RegisterData) gomponents.Node {
	return authCard("Create an account",
		FormEl(
			Method("post"), Action("/auth/register"),
			textField("username", "Username", "text", data.Username),
			textField("email", "Email", "email", data.Email),
			passwordField("password", "Password"),
			passwordField("password_confirm", "Confirm password"),
			submitButton("Register"),
		),
		P(
			Class("text-sm text-gray-500 mt-4"),
			gomponents.Text("Already registered? "),
			A(Href("/auth/login"), Class("text-indigo-600"), gomponents.Text("Log in")),
		),
	)
}

// ForgotPassword renders the reset request form.
func ForgotPassword(data auth.ForgotPasswordData) gomponents.Node {
	return authCard("Forgot password",
		FormEl(
			Method("post"), Action("/auth/forgot-password"),
			textField("email", "Email", "email", data.Email),
			submitButton("Send reset link"),
		),
	)
}

// ResetPassword renders the new-password form. The token travels in a
// hidden field.
func ResetPassword(data auth.ResetPasswordData) gomponents.Node {
	return authCard("Reset password",
		FormEl(
			Method("post"), Action("/auth/reset-password"),
			Input(Type("hidden"), Name("token"), Value(data.Token)),
			passwordField("password", "New password"),
			passwordField("password_confirm", "Confirm new password"),
			submitButton("Reset password"),
		),
	)
}

func authCard(title string, children ...gomponents.Node) gomponents.Node {
	return Div(
		Class("max-w-md mx-auto bg-white shadow rounded-lg p-6"),
		H1(Class("text-2xl font-bold mb-6"), gomponents.Text(title)),
		gomponents.Group(children),
	)
}

func textField(name, label, inputType, value string) gomponents.Node {
	return Div(
		Class("mb-4"),
		Label(Class("block text-sm font-medium mb-1"), For(name), gomponents.Text(label)),
		Input(
			Class("w-full border rounded px-3 py-2"),
			Type(inputType), ID(name), Name(name), Value(value), Required(),
		),
	)
}

func passwordField(name, label string) gomponents.Node {
	return Div(
		Class("mb-4"),
		Label(Class("block text-sm font-medium mb-1"), For(name), gomponents.Text(label)),
		Input(
			Class("w-full border rounded px-3 py-2"),
			Type("password"), ID(name), Name(name), Required(),
		),
	)
}

func submitButton(label string) gomponents.Node {
	return Button(
		Class("w-full px-4 py-2 bg-indigo-600 text-white rounded"),
		Type("submit"),
		gomponents.Text(label),
	)
}
