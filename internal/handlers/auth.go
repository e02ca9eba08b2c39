package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/email"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/session"
	"github.com/palaver-chat/palaver/internal/view"
	"github.com/palaver-chat/palaver/internal/view/dto/auth"
	"github.com/palaver-chat/palaver/web/src/templates/layouts"
	"github.com/palaver-chat/palaver/web/src/templates/pages"
)

const flashSessionName = "flash-session"
const flashFormEmail = "form_email"

// AuthHandler handles registration, login, logout and password resets.
type AuthHandler struct {
	users    domain.UserRepository
	sessions *session.Service
	emailer  email.Sender
	baseURL  string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, sessions *session.Service, emailer email.Sender, baseURL string) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		emailer:  emailer,
		baseURL:  baseURL,
	}
}

// consumeFormEmail pops a preserved email address from the flash session so
// a failed POST can pre-fill the re-rendered form.
func consumeFormEmail(c echo.Context) string {
	var email string
	if sess, err := echosession.Get(flashSessionName, c); err == nil {
		if flashes := sess.Flashes(flashFormEmail); len(flashes) > 0 {
			if val, ok := flashes[0].(string); ok {
				email = val
			}
		}
		// Save persists the cleared flash.
		_ = sess.Save(c.Request(), c.Response())
	}
	return email
}

func preserveFormEmail(c echo.Context, email string) {
	sess, _ := echosession.Get(flashSessionName, c)
	sess.AddFlash(email, flashFormEmail)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		slog.Error("failed to save session", "error", err)
	}
}

// RegisterGet renders the registration page.
func (h *AuthHandler) RegisterGet(c echo.Context) error {
	data := auth.RegisterData{Email: consumeFormEmail(c)}
	page := layouts.Base("Register", view.GetFlashData(c), pages.Register(data))
	return view.RenderPage(c, http.StatusOK, page)
}

// RegisterPost creates a new account and signs the user in.
func (h *AuthHandler) RegisterPost(c echo.Context) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")
	passwordConfirm := c.FormValue("password_confirm")

	if username == "" {
		view.SetFlashError(c, "A username is required.")
		preserveFormEmail(c, email)
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}
	if password != passwordConfirm {
		view.SetFlashError(c, "Passwords do not match.")
		preserveFormEmail(c, email)
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}
	if len(password) < 8 {
		view.SetFlashError(c, "Password must be at least 8 characters long.")
		preserveFormEmail(c, email)
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}

	newUser := &domain.User{Username: username, Email: email}
	token, err := h.users.SignUp(c.Request().Context(), newUser, password)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			view.SetFlashError(c, "A user with this email already exists.")
		} else {
			slog.Error("error creating user", "error", err)
			view.SetFlashError(c, "Could not create your account.")
		}
		preserveFormEmail(c, email)
		return c.Redirect(http.StatusSeeOther, "/auth/register")
	}

	h.establish(c, newUser, token)
	view.SetFlashSuccess(c, "Account created successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

// LoginGet renders the login page.
func (h *AuthHandler) LoginGet(c echo.Context) error {
	data := auth.LoginData{Email: consumeFormEmail(c)}
	page := layouts.Base("Login", view.GetFlashData(c), pages.Login(data))
	return view.RenderPage(c, http.StatusOK, page)
}

// LoginPost verifies credentials and establishes the session.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user := &domain.User{Email: email}
	token, err := h.users.SignIn(c.Request().Context(), user, password)
	if err != nil {
		slog.Warn("failed login attempt", "email", email, "error", err)
		view.SetFlashError(c, "Invalid email or password.")
		preserveFormEmail(c, email)
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	h.establish(c, user, token)
	view.SetFlashSuccess(c, "Logged in successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout tears down the session and expires the auth cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.AuthCookieName); err == nil && cookie.Value != "" {
		if user, err := h.users.Authenticate(c.Request().Context(), cookie.Value); err == nil && user.ID != nil {
			h.sessions.Clear(user.ID.String())
		}
	}
	setAuthCookie(c, "")
	view.SetFlashSuccess(c, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

// ForgotPasswordGet renders the reset request page.
func (h *AuthHandler) ForgotPasswordGet(c echo.Context) error {
	page := layouts.Base("Forgot Password", view.GetFlashData(c), pages.ForgotPassword(auth.ForgotPasswordData{}))
	return view.RenderPage(c, http.StatusOK, page)
}

// ForgotPasswordPost issues a reset token and emails the reset link. The
// response is identical whether or not the account exists.
func (h *AuthHandler) ForgotPasswordPost(c echo.Context) error {
	email := c.FormValue("email")

	token, err := h.users.GenerateResetToken(c.Request().Context(), email)
	if err != nil {
		slog.Info("reset token generation failed, hiding from user", "email", email, "error", err)
	}

	if token != "" && h.emailer != nil {
		resetLink := h.baseURL + "/auth/reset-password?token=" + token
		htmlBody := fmt.Sprintf(`<p>Click the link below to reset your password:</p><a href="%s">Reset Password</a>`, resetLink)
		if err := h.emailer.Send(email, "Reset Your Password", htmlBody); err != nil {
			slog.Error("failed to send password reset email", "error", err, "email", email)
		}
	}

	view.SetFlashSuccess(c, "If an account with that email exists, a password reset link has been sent.")
	return c.Redirect(http.StatusSeeOther, "/auth/forgot-password")
}

// ResetPasswordGet renders the new-password page for a reset link.
func (h *AuthHandler) ResetPasswordGet(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		view.SetFlashError(c, "A valid reset token is required to change your password.")
		return c.Redirect(http.StatusSeeOther, "/auth/forgot-password")
	}

	page := layouts.Base("Reset Password", view.GetFlashData(c), pages.ResetPassword(auth.ResetPasswordData{Token: token}))
	return view.RenderPage(c, http.StatusOK, page)
}

// ResetPasswordPost sets the new password and signs the user in.
func (h *AuthHandler) ResetPasswordPost(c echo.Context) error {
	token := c.FormValue("token")
	password := c.FormValue("password")
	passwordConfirm := c.FormValue("password_confirm")

	if password != passwordConfirm {
		view.SetFlashError(c, "Passwords do not match.")
		return c.Redirect(http.StatusSeeOther, "/auth/reset-password?token="+token)
	}
	if len(password) < 8 {
		view.SetFlashError(c, "Password must be at least 8 characters long.")
		return c.Redirect(http.StatusSeeOther, "/auth/reset-password?token="+token)
	}

	user, err := h.users.ResetPassword(c.Request().Context(), token, password)
	if err != nil {
		slog.Warn("password reset failed", "error", err)
		view.SetFlashError(c, err.Error())
		return c.Redirect(http.StatusSeeOther, "/auth/reset-password?token="+token)
	}

	sessionToken, err := h.users.SignIn(c.Request().Context(), user, password)
	if err != nil {
		slog.Error("failed to sign in user after password reset", "error", err)
		view.SetFlashError(c, "Password reset successful. Please log in with your new password.")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}

	h.establish(c, user, sessionToken)
	view.SetFlashSuccess(c, "Your password has been reset.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// establish records the session server-side and issues the auth cookie.
func (h *AuthHandler) establish(c echo.Context, user *domain.User, token string) {
	if user.ID != nil {
		h.sessions.Establish(user.ID.String(), token)
	}
	setAuthCookie(c, token)
}

// setAuthCookie sets or clears the authentication cookie. An empty token
// expires it.
func setAuthCookie(c echo.Context, token string) {
	cookie := &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	c.SetCookie(cookie)
}
