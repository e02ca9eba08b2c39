package topics

import (
	"github.com/palaver-chat/palaver/internal/modules/profile/events"
	"github.com/palaver-chat/palaver/internal/pubsub"
)

// Typed topics published by the profile module and observed by sibling views
// (e.g. the roster).
var (
	// Updated carries the authoritative post-update profile state.
	Updated = pubsub.NewEvent[events.ProfileUpdated]("profile.updated")

	// Deleted is published after an account is permanently removed.
	Deleted = pubsub.NewEvent[events.ProfileDeleted]("profile.deleted")
)
