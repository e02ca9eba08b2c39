package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
)

const writeTimeout = 10 * time.Second

// Handler upgrades authenticated HTTP requests to WebSocket connections and
// registers them with the Manager.
type Handler struct {
	manager *Manager
}

// NewHandler creates a new websocket handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Serve handles a WebSocket connection request.
func (h *Handler) Serve(c echo.Context) error {
	user, ok := c.Get(middleware.UserContextKey).(*domain.User)
	if !ok || user == nil || user.ID == nil {
		return c.String(http.StatusUnauthorized, "User not authenticated")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return c.String(http.StatusInternalServerError, "Failed to upgrade to WebSocket")
	}

	client := &Client{
		ID:     uuid.NewString(),
		UserID: user.ID.String(),
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.manager.Add(client)
	slog.Info("WebSocket client connected", "clientID", client.ID, "userID", client.UserID)

	go h.writePump(client)
	go h.readPump(client)

	return nil
}

// writePump drains the client's send channel onto the wire. It exits when the
// channel is closed by Manager.Remove.
func (h *Handler) writePump(client *Client) {
	for msg := range client.Send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := client.Conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			slog.Debug("WebSocket write failed", "clientID", client.ID, "error", err)
			break
		}
	}
	_ = client.Conn.Close(websocket.StatusNormalClosure, "")
}

// readPump consumes inbound frames (the roster channel is push-only, so
// payloads are discarded) and detects disconnects.
func (h *Handler) readPump(client *Client) {
	defer func() {
		h.manager.Remove(client.ID)
		slog.Info("WebSocket client disconnected", "clientID", client.ID, "userID", client.UserID)
	}()

	for {
		if _, _, err := client.Conn.Read(context.Background()); err != nil {
			return
		}
	}
}
