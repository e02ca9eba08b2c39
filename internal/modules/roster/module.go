package roster

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/module"
	"github.com/palaver-chat/palaver/internal/pubsub"
	"github.com/palaver-chat/palaver/internal/registry"
)

// Dependencies holds the services the roster module requires.
type Dependencies struct {
	Users       domain.UserRepository
	Subscriber  pubsub.Subscriber
	Broadcaster Broadcaster
}

// Module implements the user roster feature.
type Module struct {
	module.BaseModule
	deps   Dependencies
	roster *Roster
}

// New creates the roster module.
func New(deps Dependencies) *Module {
	return &Module{deps: deps, roster: NewRoster()}
}

func (m *Module) Name() string {
	return "roster"
}

func (m *Module) Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error {
	users, err := m.deps.Users.ListUsers(ctx)
	if err != nil {
		// The roster fills in from live events; an empty seed is survivable.
		slog.Error("failed to seed roster", "error", err)
	}
	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		if u.ID == nil {
			continue
		}
		entries = append(entries, Entry{
			UserID:   u.ID.String(),
			Username: u.Username,
			Avatar:   u.Avatar,
		})
	}
	m.roster.Seed(entries)

	NewSubscriber(m.roster, m.deps.Subscriber, m.deps.Broadcaster).Start(ctx)

	app := router.Group("/app/users", middleware.Auth(m.deps.Users))
	app.GET("", NewHandler(m.roster).Get)
	return nil
}
