package auth

// LoginData carries a previously submitted email back to the login form.
type LoginData struct {
	Email string
}

// RegisterData pre-fills the registration form after a failed submit.
type RegisterData struct {
	Username string
	Email    string
}

// ForgotPasswordData pre-fills the forgot password form.
type ForgotPasswordData struct {
	Email string
}

// ResetPasswordData carries the reset token into the hidden form field.
type ResetPasswordData struct {
	Token string
}
