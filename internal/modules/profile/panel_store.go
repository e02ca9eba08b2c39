package profile

import "sync"

// PanelStore keeps one live panel per user so a panel's state survives
// across requests for the lifetime of the session.
type PanelStore struct {
	mu     sync.Mutex
	panels map[string]*Panel
	deps   Dependencies
	// newSession produces the per-user session handle injected into panels.
	newSession func(userID string) Session
}

// NewPanelStore creates a store. newSession is called once per user to bind
// a session handle to that user's panel.
func NewPanelStore(deps Dependencies, newSession func(userID string) Session) *PanelStore {
	return &PanelStore{
		panels:     make(map[string]*Panel),
		deps:       deps,
		newSession: newSession,
	}
}

// Get returns the user's panel, creating and mounting one on first access.
func (s *PanelStore) Get(userID string) *Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.panels[userID]; ok {
		return p
	}
	deps := s.deps
	deps.Session = s.newSession(userID)
	p := NewPanel(deps)
	s.panels[userID] = p
	return p
}

// Remove unmounts and drops the user's panel, typically on logout or
// account deletion. In-flight request completions for the old panel are
// discarded.
func (s *PanelStore) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.panels[userID]; ok {
		p.Unmount()
		delete(s.panels, userID)
	}
}

// Count reports how many panels are live.
func (s *PanelStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.panels)
}
