package websocket

import (
	"sync"

	"github.com/coder/websocket"
)

// Manager owns the lifecycle of all connected WebSocket clients. It is the
// process-wide realtime connection service: modules disconnect a user's live
// connections through it and broadcast rendered fragments to everyone.
type Manager struct {
	clients map[string]*Client
	users   map[string]map[string]bool // userID -> set of clientIDs
	mu      sync.RWMutex
}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		users:   make(map[string]map[string]bool),
	}
}

// Add registers a new client.
func (m *Manager) Add(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clients[client.ID] = client

	if client.UserID != "" {
		if _, ok := m.users[client.UserID]; !ok {
			m.users[client.UserID] = make(map[string]bool)
		}
		m.users[client.UserID][client.ID] = true
	}
}

// Remove unregisters a client and closes its send channel.
func (m *Manager) Remove(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(clientID)
}

func (m *Manager) removeLocked(clientID string) {
	client, ok := m.clients[clientID]
	if !ok {
		return
	}
	delete(m.clients, clientID)

	if client.UserID != "" && m.users[client.UserID] != nil {
		delete(m.users[client.UserID], clientID)
		if len(m.users[client.UserID]) == 0 {
			delete(m.users, client.UserID)
		}
	}
	client.Close()
}

// GetByUser returns all clients for a given user ID.
func (m *Manager) GetByUser(userID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var userClients []*Client
	if clientIDs, ok := m.users[userID]; ok {
		for id := range clientIDs {
			if client, ok := m.clients[id]; ok {
				userClients = append(userClients, client)
			}
		}
	}
	return userClients
}

// DisconnectUser terminates every live connection belonging to the user.
// Used on logout and account deletion.
func (m *Manager) DisconnectUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clientIDs, ok := m.users[userID]
	if !ok {
		return
	}
	for id := range clientIDs {
		if client, ok := m.clients[id]; ok && client.Conn != nil {
			_ = client.Conn.Close(websocket.StatusNormalClosure, "session ended")
		}
		m.removeLocked(id)
	}
}

// Broadcast sends a message to every connected client.
func (m *Manager) Broadcast(msg []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		client.SendMessage(msg)
	}
}

// Count returns the number of connected clients.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
