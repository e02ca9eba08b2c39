package websocket

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Client represents a single connected WebSocket client.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	mu     sync.RWMutex
}

// SendMessage safely sends a message to the client's send channel. Messages
// are dropped rather than blocking when the client cannot keep up.
func (c *Client) SendMessage(msg []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Send == nil {
		return
	}

	select {
	case c.Send <- msg:
	default:
		slog.Warn("Client send channel full, dropping message", "clientID", c.ID)
	}
}

// Close safely closes the client's send channel.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Send != nil {
		close(c.Send)
		c.Send = nil
	}
}
