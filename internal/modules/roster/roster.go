// Package roster maintains the live list of registered users shown next to
// the profile panel. It follows profile change events on the bus and pushes
// a re-rendered list to every connected browser.
package roster

import (
	"sort"
	"sync"
)

// Entry is one user's row in the roster.
type Entry struct {
	UserID   string
	Username string
	Avatar   string
}

// Roster is the in-memory user list. Event versions are tracked per user so
// notifications arriving out of order cannot resurrect stale state.
type Roster struct {
	mu       sync.Mutex
	entries  map[string]Entry
	versions map[string]uint64
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		entries:  make(map[string]Entry),
		versions: make(map[string]uint64),
	}
}

// Seed loads the initial entries, typically from the database at boot.
// Seeded entries carry version zero so any live event supersedes them.
func (r *Roster) Seed(entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		if _, seen := r.versions[e.UserID]; !seen {
			r.entries[e.UserID] = e
		}
	}
}

// ApplyUpdate applies a profile change. It reports whether the roster
// changed; stale versions are discarded.
func (r *Roster) ApplyUpdate(userID string, version uint64, entry Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version <= r.versions[userID] {
		return false
	}
	r.versions[userID] = version
	r.entries[userID] = entry
	return true
}

// ApplyDelete removes a user. The version is recorded so a late update for
// the deleted account cannot re-add it.
func (r *Roster) ApplyDelete(userID string, version uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if version <= r.versions[userID] {
		return false
	}
	r.versions[userID] = version
	_, existed := r.entries[userID]
	delete(r.entries, userID)
	return existed
}

// Entries returns the current list ordered by username.
func (r *Roster) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Username == out[j].Username {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Username < out[j].Username
	})
	return out
}
