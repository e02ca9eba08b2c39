package roster

import (
	"context"
	"errors"
	"log/slog"

	"github.com/palaver-chat/palaver/internal/modules/profile/events"
	"github.com/palaver-chat/palaver/internal/modules/profile/topics"
	"github.com/palaver-chat/palaver/internal/pubsub"
)

// Broadcaster pushes a rendered fragment to every connected client.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// Subscriber follows profile change events and pushes the re-rendered
// roster to connected browsers.
type Subscriber struct {
	roster      *Roster
	subscriber  pubsub.Subscriber
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewSubscriber creates a roster subscriber.
func NewSubscriber(roster *Roster, sub pubsub.Subscriber, broadcaster Broadcaster) *Subscriber {
	return &Subscriber{
		roster:      roster,
		subscriber:  sub,
		broadcaster: broadcaster,
		logger:      slog.Default().With("component", "roster-subscriber"),
	}
}

// Start begins listening for profile change events.
func (s *Subscriber) Start(ctx context.Context) {
	s.logger.Info("starting roster subscriber")

	go func() {
		err := pubsub.SubscribeTyped(ctx, s.subscriber, topics.Updated, s.handleUpdate)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("roster update subscriber stopped", "error", err)
		}
	}()

	go func() {
		err := pubsub.SubscribeTyped(ctx, s.subscriber, topics.Deleted, s.handleDelete)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("roster delete subscriber stopped", "error", err)
		}
	}()
}

func (s *Subscriber) handleUpdate(ctx context.Context, evt events.ProfileUpdated) error {
	changed := s.roster.ApplyUpdate(evt.UserID, evt.Version, Entry{
		UserID:   evt.UserID,
		Username: evt.Username,
		Avatar:   evt.Avatar,
	})
	if !changed {
		return nil
	}
	return s.push()
}

func (s *Subscriber) handleDelete(ctx context.Context, evt events.ProfileDeleted) error {
	if !s.roster.ApplyDelete(evt.UserID, evt.Version) {
		return nil
	}
	return s.push()
}

func (s *Subscriber) push() error {
	html, err := renderList(s.roster.Entries())
	if err != nil {
		s.logger.Error("failed to render roster", "error", err)
		return err
	}
	s.broadcaster.Broadcast(html)
	return nil
}
