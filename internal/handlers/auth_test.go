package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/email"
	"github.com/palaver-chat/palaver/internal/handlers"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/session"
	"github.com/palaver-chat/palaver/internal/testutils"
)

const testSessionSecret = "a-very-secret-key-for-testing-!"

func testRecordID() *surrealmodels.RecordID {
	return testutils.RecordID("user", "1")
}

// mockUserStore implements the pieces of domain.UserRepository the auth
// handlers touch.
type mockUserStore struct {
	domain.UserRepository
}

func (m *mockUserStore) SignUp(ctx context.Context, user *domain.User, password string) (string, error) {
	user.ID = testRecordID()
	return "test-token", nil
}

func (m *mockUserStore) SignIn(ctx context.Context, user *domain.User, password string) (string, error) {
	user.ID = testRecordID()
	return "test-token", nil
}

func (m *mockUserStore) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "test-token" {
		return &domain.User{ID: testRecordID(), Email: "test@example.com"}, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockUserStore) GenerateResetToken(ctx context.Context, email string) (string, error) {
	return "reset-token", nil
}

func (m *mockUserStore) ResetPassword(ctx context.Context, token, password string) (*domain.User, error) {
	return &domain.User{ID: testRecordID(), Email: "test@example.com"}, nil
}

func setupAuthTest() (*echo.Echo, *handlers.AuthHandler, *session.Service) {
	e := echo.New()
	store := &mockUserStore{}
	sessionService := session.NewService(store)
	authHandler := handlers.NewAuthHandler(store, sessionService, &email.LogSender{}, "http://localhost:8080")

	cookieStore := gorillaStore()
	e.Use(echosession.Middleware(cookieStore))

	return e, authHandler, sessionService
}

func gorillaStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte(testSessionSecret))
}

// assertFlashMessage checks for a specific flash message in the session.
func assertFlashMessage(t *testing.T, req *http.Request, key, expectedMessage string) {
	t.Helper()
	sess, _ := gorillaStore().Get(req, "flash-session")
	flashes := sess.Flashes(key)
	require.NotEmpty(t, flashes, "expected flash message for key %s", key)
	assert.Equal(t, expectedMessage, flashes[0])
}

func postForm(e *echo.Echo, target string, form url.Values) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, req
}

func TestRegisterPost(t *testing.T) {
	e, authHandler, sessionService := setupAuthTest()
	e.POST("/auth/register", authHandler.RegisterPost)

	t.Run("successful registration establishes the session", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("email", "test@example.com")
		form.Set("password", "password123")
		form.Set("password_confirm", "password123")

		rec, req := postForm(e, "/auth/register", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		assertFlashMessage(t, req, "success", "Account created successfully!")

		handle := sessionService.Handle(testRecordID().String())
		assert.Equal(t, "test-token", handle.Token())

		var authCookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == middleware.AuthCookieName {
				authCookie = c
			}
		}
		require.NotNil(t, authCookie)
		assert.Equal(t, "test-token", authCookie.Value)
	})

	t.Run("password mismatch re-renders with an error", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("email", "test2@example.com")
		form.Set("password", "password123")
		form.Set("password_confirm", "different")

		rec, req := postForm(e, "/auth/register", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/register", rec.Header().Get("Location"))
		assertFlashMessage(t, req, "error", "Passwords do not match.")
	})

	t.Run("missing username is rejected", func(t *testing.T) {
		form := url.Values{}
		form.Set("email", "test3@example.com")
		form.Set("password", "password123")
		form.Set("password_confirm", "password123")

		rec, req := postForm(e, "/auth/register", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assertFlashMessage(t, req, "error", "A username is required.")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		form := url.Values{}
		form.Set("username", "alice")
		form.Set("email", "test4@example.com")
		form.Set("password", "short")
		form.Set("password_confirm", "short")

		rec, req := postForm(e, "/auth/register", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assertFlashMessage(t, req, "error", "Password must be at least 8 characters long.")
	})
}

func TestLoginPost(t *testing.T) {
	e, authHandler, sessionService := setupAuthTest()
	e.POST("/auth/login", authHandler.LoginPost)

	form := url.Values{}
	form.Set("email", "test@example.com")
	form.Set("password", "password123")

	rec, req := postForm(e, "/auth/login", form)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assertFlashMessage(t, req, "success", "Logged in successfully!")
	assert.Equal(t, "test-token", sessionService.Handle(testRecordID().String()).Token())
}

func TestLogoutClearsSession(t *testing.T) {
	e, authHandler, sessionService := setupAuthTest()
	e.GET("/auth/logout", authHandler.Logout)

	sessionService.Establish(testRecordID().String(), "test-token")

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "test-token"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
	assert.Empty(t, sessionService.Handle(testRecordID().String()).Token())

	var authCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName {
			authCookie = c
		}
	}
	require.NotNil(t, authCookie)
	assert.Empty(t, authCookie.Value)
	assert.Negative(t, authCookie.MaxAge)
}

func TestForgotPasswordPostHidesAccountExistence(t *testing.T) {
	e, authHandler, _ := setupAuthTest()
	e.POST("/auth/forgot-password", authHandler.ForgotPasswordPost)

	form := url.Values{}
	form.Set("email", "whoever@example.com")

	rec, req := postForm(e, "/auth/forgot-password", form)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assertFlashMessage(t, req, "success", "If an account with that email exists, a password reset link has been sent.")
}

func TestResetPasswordPostSignsUserIn(t *testing.T) {
	e, authHandler, sessionService := setupAuthTest()
	e.POST("/auth/reset-password", authHandler.ResetPasswordPost)

	form := url.Values{}
	form.Set("token", "reset-token")
	form.Set("password", "newpassword123")
	form.Set("password_confirm", "newpassword123")

	rec, req := postForm(e, "/auth/reset-password", form)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assertFlashMessage(t, req, "success", "Your password has been reset.")
	assert.Equal(t, "test-token", sessionService.Handle(testRecordID().String()).Token())
}
