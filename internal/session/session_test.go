package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palaver-chat/palaver/internal/domain"
)

// fakeUserRepo implements just enough of domain.UserRepository for session tests.
type fakeUserRepo struct {
	validTokens map[string]*domain.User
}

func (f *fakeUserRepo) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if u, ok := f.validTokens[token]; ok {
		return u, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func (f *fakeUserRepo) SignUp(ctx context.Context, user *domain.User, password string) (string, error) {
	return "", nil
}
func (f *fakeUserRepo) SignIn(ctx context.Context, user *domain.User, password string) (string, error) {
	return "", nil
}
func (f *fakeUserRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) ListUsers(ctx context.Context) ([]*domain.User, error) { return nil, nil }
func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.User, string, error) {
	return nil, "", nil
}
func (f *fakeUserRepo) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeUserRepo) GenerateResetToken(ctx context.Context, email string) (string, error) {
	return "", nil
}
func (f *fakeUserRepo) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	return nil, nil
}

func TestService_EstablishAndClear(t *testing.T) {
	svc := NewService(&fakeUserRepo{})

	h := svc.Establish("user:u1", "tok-1")
	assert.Equal(t, "user:u1", h.UserID())
	assert.Equal(t, "tok-1", h.Token())

	h.Clear()
	assert.Empty(t, h.UserID(), "cleared session must report no identity")
	assert.Empty(t, h.Token())
}

func TestHandle_StoreTokenReplaces(t *testing.T) {
	svc := NewService(&fakeUserRepo{})
	h := svc.Establish("user:u1", "tok-1")

	h.StoreToken("tok-2")
	assert.Equal(t, "tok-2", h.Token())
}

func TestHandle_Reauthenticate(t *testing.T) {
	repo := &fakeUserRepo{validTokens: map[string]*domain.User{
		"tok-good": {Username: "alice"},
	}}
	svc := NewService(repo)

	t.Run("valid token", func(t *testing.T) {
		h := svc.Establish("user:u1", "tok-good")
		require.NoError(t, h.Reauthenticate(context.Background()))
		assert.Equal(t, "user:u1", h.UserID())
	})

	t.Run("invalid token tears the session down", func(t *testing.T) {
		h := svc.Establish("user:u2", "tok-bad")
		err := h.Reauthenticate(context.Background())
		require.Error(t, err)
		assert.Empty(t, h.UserID())
	})

	t.Run("signed-out handle", func(t *testing.T) {
		h := svc.Handle("user:u3")
		assert.ErrorIs(t, h.Reauthenticate(context.Background()), domain.ErrInvalidCredentials)
	})
}
