// Package session models the authenticated session as a process-wide service
// with an explicit lifecycle: establish on login, current value while active,
// teardown on logout or account deletion. Panels receive a per-user Handle
// instead of reaching into ambient request state, which keeps them testable
// with fakes.
package session

import (
	"context"
	"sync"

	"github.com/palaver-chat/palaver/internal/domain"
)

// Service tracks the server-side session state of every signed-in user.
type Service struct {
	mu     sync.RWMutex
	tokens map[string]string // userID -> current session token
	users  domain.UserRepository
}

// NewService creates a new session service backed by the user repository.
func NewService(users domain.UserRepository) *Service {
	return &Service{
		tokens: make(map[string]string),
		users:  users,
	}
}

// Establish records a fresh session for the user and returns its handle.
func (s *Service) Establish(userID, token string) *Handle {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
	return &Handle{service: s, userID: userID}
}

// Handle returns the session handle for a user. The handle reports an empty
// identity once the session has been cleared.
func (s *Service) Handle(userID string) *Handle {
	return &Handle{service: s, userID: userID}
}

// Clear tears down the session for a user.
func (s *Service) Clear(userID string) {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
}

func (s *Service) token(userID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[userID]
	return t, ok
}

func (s *Service) storeToken(userID, token string) {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
}

// Handle is one user's view of the session service.
type Handle struct {
	service *Service
	userID  string
}

// UserID returns the session's user identity, or "" when signed out.
func (h *Handle) UserID() string {
	if _, ok := h.service.token(h.userID); !ok {
		return ""
	}
	return h.userID
}

// Token returns the current session token, or "" when signed out.
func (h *Handle) Token() string {
	t, _ := h.service.token(h.userID)
	return t
}

// StoreToken replaces the stored session token. The previous token is gone;
// callers that issue cookies must re-read Token afterwards.
func (h *Handle) StoreToken(token string) {
	h.service.storeToken(h.userID, token)
}

// Reauthenticate validates the stored token against the user repository.
// An invalid token tears the session down.
func (h *Handle) Reauthenticate(ctx context.Context) error {
	token, ok := h.service.token(h.userID)
	if !ok {
		return domain.ErrInvalidCredentials
	}
	if _, err := h.service.users.Authenticate(ctx, token); err != nil {
		h.service.Clear(h.userID)
		return err
	}
	return nil
}

// Clear tears down this user's session.
func (h *Handle) Clear() {
	h.service.Clear(h.userID)
}
