package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/handlers"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/websocket"
)

// RegisterRoutes sets up the application-level routes. Module routes mount
// separately through RegisterModules.
func (s *Server) RegisterRoutes() {
	homeHandler := handlers.NewHomeHandler()
	authHandler := handlers.NewAuthHandler(s.userStore, s.sessions, s.emailer, s.Cfg.GetAppBaseURL())
	wsHandler := websocket.NewHandler(s.manager)

	auth := middleware.Auth(s.userStore)

	s.E.GET("/", homeHandler.Get, auth)

	s.E.GET("/auth/register", authHandler.RegisterGet)
	s.E.POST("/auth/register", authHandler.RegisterPost)

	s.E.GET("/auth/login", authHandler.LoginGet)
	s.E.POST("/auth/login", authHandler.LoginPost)
	s.E.GET("/auth/logout", authHandler.Logout)

	s.E.GET("/auth/forgot-password", authHandler.ForgotPasswordGet)
	s.E.POST("/auth/forgot-password", authHandler.ForgotPasswordPost)

	s.E.GET("/auth/reset-password", authHandler.ResetPasswordGet)
	s.E.POST("/auth/reset-password", authHandler.ResetPasswordPost)

	s.E.GET("/ws", wsHandler.Serve, auth)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
