package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/surrealdb/surrealdb.go"

	"github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/database"
	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/email"
	"github.com/palaver-chat/palaver/internal/handlers"
	"github.com/palaver-chat/palaver/internal/logging"
	"github.com/palaver-chat/palaver/internal/module"
	"github.com/palaver-chat/palaver/internal/pubsub"
	"github.com/palaver-chat/palaver/internal/registry"
	sessionsvc "github.com/palaver-chat/palaver/internal/session"
	"github.com/palaver-chat/palaver/internal/storage"
	"github.com/palaver-chat/palaver/internal/websocket"
)

// Server wires the application together: configuration, storage, the bus,
// the realtime layer, and the feature modules.
type Server struct {
	E   *echo.Echo
	DB  *surrealdb.DB
	Cfg config.Provider

	userStore domain.UserRepository
	fileStore domain.FileRepository
	files     storage.Store
	emailer   email.Sender
	sessions  *sessionsvc.Service
	manager   *websocket.Manager
	bridge    *pubsub.WatermillBridge
	publisher pubsub.Publisher
	registry  *registry.Registry
	modules   []module.Module

	tracingCleanup func()
}

// New creates and wires a Server instance.
func New() *Server {
	logging.New()
	cfg := config.New()

	db, err := database.NewDB(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	emailer, err := email.NewService(cfg)
	if err != nil {
		slog.Error("failed to initialize email service", "error", err)
		os.Exit(1)
	}

	userStore := database.NewUserStore(db)
	fileStore := database.NewFileStore(db)
	files := storage.NewOsStore(cfg.GetUploadDir())

	// The bus carries profile change events between modules. Publishing goes
	// through the tracing decorator; with tracing disabled it is a noop span.
	bridge := pubsub.NewWatermillBridge()
	tracer, tracingCleanup, err := pubsub.SetupOTel(context.Background(), pubsub.LoadTracingConfigFromEnv())
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	publisher := pubsub.NewTracingPublisher(bridge, tracer)

	// Process-wide services: sessions first, then the realtime layer that
	// depends on knowing who is signed in.
	sessionService := sessionsvc.NewService(userStore)
	manager := websocket.NewManager()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	cookieStore := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	e.Use(echosession.Middleware(cookieStore))

	e.Static("/static", "web/static")
	setupErrorHandling(e)

	s := &Server{
		E:              e,
		DB:             db,
		Cfg:            cfg,
		userStore:      userStore,
		fileStore:      fileStore,
		files:          files,
		emailer:        emailer,
		sessions:       sessionService,
		manager:        manager,
		bridge:         bridge,
		publisher:      publisher,
		registry:       registry.New(cfg),
		tracingCleanup: tracingCleanup,
	}
	s.modules = appModules(s)
	return s
}

// UserStore exposes the user repository, useful for tests.
func (s *Server) UserStore() domain.UserRepository {
	return s.userStore
}

// Sessions exposes the session service, useful for tests.
func (s *Server) Sessions() *sessionsvc.Service {
	return s.sessions
}

// setupErrorHandling logs unhandled errors with a stack trace before echo
// writes its generic response.
func setupErrorHandling(e *echo.Echo) {
	defaultHandler := e.HTTPErrorHandler
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if _, ok := err.(*echo.HTTPError); !ok {
			slog.Error("Internal Server Error (Unhandled)",
				"error", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
			err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		defaultHandler(err, c)
	}
}

// RegisterModules runs the two-phase module lifecycle: every module
// registers its shared services, then every module boots its routes and
// background workers.
func (s *Server) RegisterModules(ctx context.Context) error {
	for _, m := range s.modules {
		if err := m.Register(s.registry); err != nil {
			return fmt.Errorf("module %s failed to register: %w", m.Name(), err)
		}
	}
	root := s.E.Group("")
	for _, m := range s.modules {
		if err := m.Boot(ctx, root, s.registry); err != nil {
			return fmt.Errorf("module %s failed to boot: %w", m.Name(), err)
		}
	}
	return nil
}
