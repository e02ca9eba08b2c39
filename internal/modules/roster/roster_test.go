package roster

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-chat/palaver/internal/modules/profile/events"
)

func TestRosterApplyUpdateOrdersByUsername(t *testing.T) {
	r := NewRoster()

	assert.True(t, r.ApplyUpdate("user:b", 1, Entry{UserID: "user:b", Username: "bob"}))
	assert.True(t, r.ApplyUpdate("user:a", 2, Entry{UserID: "user:a", Username: "alice"}))

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "bob", entries[1].Username)
}

func TestRosterDiscardsStaleVersions(t *testing.T) {
	r := NewRoster()
	require.True(t, r.ApplyUpdate("user:a", 5, Entry{UserID: "user:a", Username: "alice2"}))

	assert.False(t, r.ApplyUpdate("user:a", 3, Entry{UserID: "user:a", Username: "alice"}),
		"an older notification must not overwrite newer state")
	assert.Equal(t, "alice2", r.Entries()[0].Username)
}

func TestRosterDeleteWinsOverLateUpdate(t *testing.T) {
	r := NewRoster()
	require.True(t, r.ApplyUpdate("user:a", 1, Entry{UserID: "user:a", Username: "alice"}))
	require.True(t, r.ApplyDelete("user:a", 3))

	assert.False(t, r.ApplyUpdate("user:a", 2, Entry{UserID: "user:a", Username: "alice"}),
		"a late update must not resurrect a deleted account")
	assert.Empty(t, r.Entries())
}

func TestRosterSeedDoesNotOverrideLiveState(t *testing.T) {
	r := NewRoster()
	require.True(t, r.ApplyUpdate("user:a", 1, Entry{UserID: "user:a", Username: "alice2"}))

	r.Seed([]Entry{
		{UserID: "user:a", Username: "alice"},
		{UserID: "user:b", Username: "bob"},
	})

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "alice2", entries[0].Username, "seed must not clobber event-sourced state")
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages [][]byte
}

func (b *fakeBroadcaster) Broadcast(msg []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func (b *fakeBroadcaster) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.messages) == 0 {
		return ""
	}
	return string(b.messages[len(b.messages)-1])
}

func TestSubscriberPushesRenderedList(t *testing.T) {
	r := NewRoster()
	b := &fakeBroadcaster{}
	s := NewSubscriber(r, nil, b)

	err := s.handleUpdate(context.Background(), events.ProfileUpdated{
		UserID:   "user:a",
		Version:  1,
		Username: "alice",
		Avatar:   "/files/avatars/alice.png",
	})
	require.NoError(t, err)

	require.Equal(t, 1, b.count())
	html := b.last()
	assert.Contains(t, html, `id="`+ListID+`"`)
	assert.Contains(t, html, "hx-swap-oob")
	assert.Contains(t, html, "alice")
	assert.Contains(t, html, "/files/avatars/alice.png")
}

func TestSubscriberIgnoresStaleEvents(t *testing.T) {
	r := NewRoster()
	b := &fakeBroadcaster{}
	s := NewSubscriber(r, nil, b)

	require.NoError(t, s.handleUpdate(context.Background(), events.ProfileUpdated{
		UserID: "user:a", Version: 2, Username: "alice2",
	}))
	require.NoError(t, s.handleUpdate(context.Background(), events.ProfileUpdated{
		UserID: "user:a", Version: 1, Username: "alice",
	}))

	assert.Equal(t, 1, b.count(), "stale events must not trigger a push")
	assert.True(t, strings.Contains(b.last(), "alice2"))
}

func TestSubscriberPushesRemovalOnDelete(t *testing.T) {
	r := NewRoster()
	b := &fakeBroadcaster{}
	s := NewSubscriber(r, nil, b)

	require.NoError(t, s.handleUpdate(context.Background(), events.ProfileUpdated{
		UserID: "user:a", Version: 1, Username: "alice",
	}))
	require.NoError(t, s.handleDelete(context.Background(), events.ProfileDeleted{
		UserID: "user:a", Version: 2,
	}))

	require.Equal(t, 2, b.count())
	assert.NotContains(t, b.last(), ">alice<")
}
