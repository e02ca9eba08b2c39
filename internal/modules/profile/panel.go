package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/modules/profile/events"
	"github.com/palaver-chat/palaver/internal/modules/profile/topics"
	"github.com/palaver-chat/palaver/internal/profileapi"
	"github.com/palaver-chat/palaver/internal/pubsub"
)

// Mode is the panel's current view mode. Exactly one of the three views is
// visible at a time; Loading doubles as the signed-out placeholder.
type Mode int

const (
	ModeLoading Mode = iota
	ModeDisplay
	ModeEditing
	ModeConfirmingDelete
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeDisplay:
		return "display"
	case ModeEditing:
		return "editing"
	case ModeConfirmingDelete:
		return "confirming-delete"
	default:
		return "unknown"
	}
}

// Status tracks one network operation's progress so the UI can render
// in-flight and failed states.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSucceeded
	StatusFailed
)

// OpStatus pairs a Status with the classified failure reason, when failed.
type OpStatus struct {
	Status Status
	Reason error
}

// Draft holds the locally edited, not-yet-submitted copy of the editable
// profile fields. It is seeded from the committed profile on BeginEdit and
// discarded on cancel, so cancelling truly reverts.
type Draft struct {
	Username string `validate:"required,min=1,max=64"`
	Email    string `validate:"required,email"`
}

// Session is the panel's view of the auth session service.
type Session interface {
	// UserID returns the session's user identity, or "" when signed out.
	UserID() string
	Token() string
	StoreToken(token string)
	Reauthenticate(ctx context.Context) error
	Clear()
}

// Realtime is the panel's view of the realtime connection service.
type Realtime interface {
	DisconnectUser(userID string)
}

// draftValidator checks drafts before they cross the network.
var draftValidator = validator.New()

// profileVersion numbers outgoing change events monotonically.
var profileVersion atomic.Uint64

func nextVersion() uint64 {
	return profileVersion.Add(1)
}

// Panel renders and mutates exactly one user's profile. It owns the local
// edit draft and coordinates with the realtime layer so sibling views learn
// about changes. All mutations take the panel lock; network calls run
// outside it and their results are dropped once the panel is unmounted.
type Panel struct {
	api      profileapi.API
	session  Session
	realtime Realtime
	bus      pubsub.Publisher
	logger   *slog.Logger

	mu            sync.Mutex
	mode          Mode
	mounted       bool
	committed     *profileapi.Profile
	draft         *Draft
	pendingAvatar *profileapi.AvatarFile

	loadStatus   OpStatus
	submitStatus OpStatus
	deleteStatus OpStatus
}

// Dependencies holds the collaborators a Panel needs.
type Dependencies struct {
	API      profileapi.API
	Session  Session
	Realtime Realtime
	Bus      pubsub.Publisher
}

// NewPanel creates a mounted panel in Loading mode.
func NewPanel(deps Dependencies) *Panel {
	return &Panel{
		api:      deps.API,
		session:  deps.Session,
		realtime: deps.Realtime,
		bus:      deps.Bus,
		logger:   slog.Default().With("component", "profile-panel"),
		mode:     ModeLoading,
		mounted:  true,
	}
}

// Load fetches the profile keyed by the current session. Without a session
// the panel stays in Loading and never touches the network. A failed fetch
// leaves the previous state in place and records the classified reason.
func (p *Panel) Load(ctx context.Context) error {
	p.mu.Lock()
	if p.mode != ModeLoading || !p.mounted {
		p.mu.Unlock()
		return nil
	}
	userID := p.session.UserID()
	if userID == "" {
		p.mu.Unlock()
		return nil
	}
	token := p.session.Token()
	p.loadStatus = OpStatus{Status: StatusPending}
	p.mu.Unlock()

	fetched, err := p.api.GetProfile(ctx, token)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return nil
	}
	if err != nil {
		p.logger.Error("failed to load profile", "userID", userID, "error", err)
		p.loadStatus = OpStatus{Status: StatusFailed, Reason: domain.ClassifyTransport(err)}
		return err
	}

	p.committed = fetched
	p.mode = ModeDisplay
	p.loadStatus = OpStatus{Status: StatusSucceeded}
	return nil
}

// BeginEdit transitions Display -> Editing, seeding the draft from the
// committed profile.
func (p *Panel) BeginEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeDisplay || p.committed == nil {
		return
	}
	p.draft = &Draft{
		Username: p.committed.Username,
		Email:    p.committed.Email,
	}
	p.pendingAvatar = nil
	p.submitStatus = OpStatus{}
	p.mode = ModeEditing
}

// UpdateDraftField mutates one of the two editable text fields of the draft.
// The avatar is handled separately as a file reference.
func (p *Panel) UpdateDraftField(field, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeEditing || p.draft == nil {
		return fmt.Errorf("panel is not in edit mode")
	}
	switch field {
	case "username":
		p.draft.Username = value
	case "email":
		p.draft.Email = value
	default:
		return fmt.Errorf("field %q is not editable", field)
	}
	return nil
}

// SelectAvatarFile stores a pending avatar for the next submission. It does
// not touch the committed or drafted avatar reference; only the server's
// response does that.
func (p *Panel) SelectAvatarFile(filename string, content []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeEditing {
		return
	}
	p.pendingAvatar = &profileapi.AvatarFile{Filename: filename, Content: content}
}

// CancelEdit discards the draft and any pending avatar and returns to
// Display. The committed profile is untouched.
func (p *Panel) CancelEdit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeEditing {
		return
	}
	p.draft = nil
	p.pendingAvatar = nil
	p.submitStatus = OpStatus{}
	p.mode = ModeDisplay
}

// SubmitEdit sends the draft and pending avatar as a partial update. On
// success the panel stores the rotated session token, re-authenticates,
// adopts the server's returned profile wholesale, announces the change to
// sibling views, and returns to Display. On failure it stays in Editing with
// the draft preserved.
func (p *Panel) SubmitEdit(ctx context.Context) error {
	p.mu.Lock()
	if p.mode != ModeEditing || p.draft == nil || p.committed == nil {
		p.mu.Unlock()
		return fmt.Errorf("panel is not in edit mode")
	}
	draft := *p.draft
	if err := draftValidator.Struct(draft); err != nil {
		p.submitStatus = OpStatus{Status: StatusFailed, Reason: domain.ErrValidationRejected}
		p.mu.Unlock()
		return fmt.Errorf("draft rejected: %w", domain.ErrValidationRejected)
	}
	update := profileapi.UpdateRequest{
		Username: draft.Username,
		Email:    draft.Email,
		Avatar:   p.pendingAvatar,
	}
	id := p.committed.ID
	token := p.session.Token()
	p.submitStatus = OpStatus{Status: StatusPending}
	p.mu.Unlock()

	result, err := p.api.UpdateProfile(ctx, token, id, update)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return nil
	}
	if err != nil {
		p.logger.Error("failed to submit profile edit", "userID", id, "error", err)
		p.submitStatus = OpStatus{Status: StatusFailed, Reason: domain.ClassifyTransport(err)}
		return err
	}

	// The server rotated the token; adopt it and refresh the session.
	p.session.StoreToken(result.AuthToken)
	if err := p.session.Reauthenticate(ctx); err != nil {
		p.logger.Error("re-authentication after profile update failed", "userID", id, "error", err)
	}

	// Server is authoritative: adopt its payload, not the local draft.
	committed := result.Payload
	p.committed = &committed
	p.draft = nil
	p.pendingAvatar = nil
	p.mode = ModeDisplay
	p.submitStatus = OpStatus{Status: StatusSucceeded}

	p.announceUpdate(ctx, committed)
	return nil
}

// RequestDelete transitions Editing -> ConfirmingDelete. No side effects.
func (p *Panel) RequestDelete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeEditing {
		return
	}
	p.deleteStatus = OpStatus{}
	p.mode = ModeConfirmingDelete
}

// CancelDelete returns to Editing with the draft fully intact.
func (p *Panel) CancelDelete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeConfirmingDelete {
		return
	}
	p.mode = ModeEditing
}

// ConfirmDelete permanently removes the account. On success it tears down
// the realtime connection, clears the session, and resets the panel; every
// later operation is a no-op because the panel has no identity to act on.
// On failure the panel remains in ConfirmingDelete so the user can retry or
// cancel.
func (p *Panel) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	if p.mode != ModeConfirmingDelete || p.committed == nil {
		p.mu.Unlock()
		return fmt.Errorf("panel is not confirming a delete")
	}
	id := p.committed.ID
	token := p.session.Token()
	p.deleteStatus = OpStatus{Status: StatusPending}
	p.mu.Unlock()

	err := p.api.DeleteProfile(ctx, token, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.mounted {
		return nil
	}
	if err != nil {
		p.logger.Error("failed to delete account", "userID", id, "error", err)
		p.deleteStatus = OpStatus{Status: StatusFailed, Reason: domain.ClassifyTransport(err)}
		return err
	}

	p.announceDelete(ctx, id)
	p.realtime.DisconnectUser(id)
	p.session.Clear()
	p.reset()
	p.deleteStatus = OpStatus{Status: StatusSucceeded}
	return nil
}

// Disconnect logs the user out from the Display view: realtime teardown and
// session clear, no server mutation.
func (p *Panel) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != ModeDisplay || p.committed == nil {
		return
	}
	p.realtime.DisconnectUser(p.committed.ID)
	p.session.Clear()
	p.reset()
}

// Unmount marks the panel as torn down. Completions of in-flight requests
// arriving afterwards are dropped instead of mutating a dead view.
func (p *Panel) Unmount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mounted = false
}

// reset returns the panel to its initial signed-out state. Caller holds the lock.
func (p *Panel) reset() {
	p.committed = nil
	p.draft = nil
	p.pendingAvatar = nil
	p.mode = ModeLoading
	p.loadStatus = OpStatus{}
	p.submitStatus = OpStatus{}
}

func (p *Panel) announceUpdate(ctx context.Context, committed profileapi.Profile) {
	evt := events.ProfileUpdated{
		UserID:   committed.ID,
		Version:  nextVersion(),
		Username: committed.Username,
		Email:    committed.Email,
		Avatar:   committed.Avatar,
	}
	if err := pubsub.Publish(ctx, p.bus, topics.Updated, evt); err != nil {
		p.logger.Error("failed to publish profile update", "userID", committed.ID, "error", err)
	}
}

func (p *Panel) announceDelete(ctx context.Context, userID string) {
	evt := events.ProfileDeleted{UserID: userID, Version: nextVersion()}
	if err := pubsub.Publish(ctx, p.bus, topics.Deleted, evt); err != nil {
		p.logger.Error("failed to publish profile deletion", "userID", userID, "error", err)
	}
}

// --- Accessors for rendering and tests ---

// Mode returns the current view mode.
func (p *Panel) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Committed returns a copy of the committed profile, or nil before load.
func (p *Panel) Committed() *profileapi.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.committed == nil {
		return nil
	}
	c := *p.committed
	return &c
}

// CurrentDraft returns a copy of the edit draft, or nil outside edit mode.
func (p *Panel) CurrentDraft() *Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draft == nil {
		return nil
	}
	d := *p.draft
	return &d
}

// PendingAvatarName returns the filename of the pending avatar, or "".
func (p *Panel) PendingAvatarName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pendingAvatar == nil {
		return ""
	}
	return p.pendingAvatar.Filename
}

// LoadStatus reports the load operation's progress.
func (p *Panel) LoadStatus() OpStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadStatus
}

// SubmitStatus reports the submit operation's progress.
func (p *Panel) SubmitStatus() OpStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitStatus
}

// DeleteStatus reports the delete operation's progress.
func (p *Panel) DeleteStatus() OpStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deleteStatus
}
