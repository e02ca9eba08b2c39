package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/module"
	"github.com/palaver-chat/palaver/internal/profileapi"
	"github.com/palaver-chat/palaver/internal/pubsub"
	"github.com/palaver-chat/palaver/internal/registry"
	"github.com/palaver-chat/palaver/internal/session"
	"github.com/palaver-chat/palaver/internal/storage"
	"github.com/palaver-chat/palaver/internal/websocket"
)

// ModuleDeps holds everything the profile module needs from the application.
type ModuleDeps struct {
	Users          domain.UserRepository
	Files          domain.FileRepository
	Storage        storage.Store
	Sessions       *session.Service
	Realtime       *websocket.Manager
	Publisher      pubsub.Publisher
	APIBaseURL     string
	MaxUploadBytes int64
}

// Module bundles the profile feature: the JSON API, the htmx panel that
// consumes it, and the avatar file serving.
type Module struct {
	module.BaseModule
	deps    ModuleDeps
	panels  *PanelStore
	api     *APIHandler
	handler *Handler
}

// New creates the profile module.
func New(deps ModuleDeps) *Module {
	return &Module{deps: deps}
}

func (m *Module) Name() string {
	return "profile"
}

// PanelStoreKey publishes the panel store so other modules can drop panels
// when a user disconnects elsewhere.
var PanelStoreKey = registry.Key[*PanelStore]("profile.panels")

func (m *Module) Register(reg *registry.Registry) error {
	client := profileapi.NewClient(m.deps.APIBaseURL, &http.Client{Timeout: 15 * time.Second})
	m.panels = NewPanelStore(
		Dependencies{
			API:      client,
			Realtime: m.deps.Realtime,
			Bus:      m.deps.Publisher,
		},
		func(userID string) Session { return m.deps.Sessions.Handle(userID) },
	)
	registry.Set(reg, PanelStoreKey, m.panels)
	return nil
}

func (m *Module) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	m.api = NewAPIHandler(m.deps.Users, m.deps.Files, m.deps.Storage, m.deps.MaxUploadBytes)
	m.handler = NewHandler(m.panels, m.deps.Sessions)

	api := router.Group("/api", middleware.BearerAuth(m.deps.Users))
	m.api.RegisterRoutes(api)

	app := router.Group("/app/profile", middleware.Auth(m.deps.Users))
	m.handler.RegisterRoutes(app)

	router.GET("/files/avatars/:name", m.api.ServeAvatar)
	return nil
}
