package events

// ProfileUpdated announces that a user's profile changed. Version increases
// monotonically per process so observers can order events and detect ones
// they missed; this replaces a raise-then-clear boolean, which observers
// could race past.
type ProfileUpdated struct {
	UserID   string `json:"userID"`
	Version  uint64 `json:"version"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfileDeleted announces that a user's account was permanently removed.
type ProfileDeleted struct {
	UserID  string `json:"userID"`
	Version uint64 `json:"version"`
}
