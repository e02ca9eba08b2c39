package database

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

const sessionTokenTTL = 24 * time.Hour

// UserStore implements the domain.UserRepository interface on SurrealDB.
// Session tokens are opaque secure random strings stored on the user record
// with an expiry; rotating a token simply replaces the stored value, which
// invalidates the previous one.
type UserStore struct {
	db *surrealdb.DB
}

// NewUserStore creates a new user repository.
func NewUserStore(db *surrealdb.DB) domain.UserRepository {
	return &UserStore{db: db}
}

// FindUserByEmail retrieves a user by their email address.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE email = $email"
	return QueryOne[domain.User](ctx, s.db, query, map[string]any{"email": email})
}

// ListUsers returns every registered user ordered by username.
func (s *UserStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := Query[domain.User](ctx, s.db, "SELECT * FROM user ORDER BY username", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, len(rows))
	for i := range rows {
		users[i] = &rows[i]
	}
	return users, nil
}

// SignUp creates a new user record with an argon2-hashed password and issues
// their first session token.
func (s *UserStore) SignUp(ctx context.Context, user *domain.User, password string) (string, error) {
	existing, err := s.FindUserByEmail(ctx, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return "", domain.ErrUserAlreadyExists
	}

	query := `
		CREATE user SET
			username = $username,
			email = $email,
			avatar = $avatar,
			password = crypto::argon2::generate($password)
	`
	params := map[string]any{
		"username": user.Username,
		"email":    user.Email,
		"avatar":   user.Avatar,
		"password": password,
	}
	created, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return "", NewDBError(ErrQueryFailed, "user record was not created")
	}
	user.ID = created.ID

	return s.issueToken(ctx, created.ID.String())
}

// SignIn validates the credentials and issues a fresh session token.
func (s *UserStore) SignIn(ctx context.Context, user *domain.User, password string) (string, error) {
	query := `
		SELECT * FROM user
		WHERE email = $email AND crypto::argon2::compare(password, $password)
	`
	params := map[string]any{"email": user.Email, "password": password}
	found, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return "", fmt.Errorf("failed to verify credentials: %w", err)
	}
	if found == nil {
		return "", domain.ErrInvalidCredentials
	}
	user.ID = found.ID

	return s.issueToken(ctx, found.ID.String())
}

// Authenticate validates a session token and returns the associated user.
func (s *UserStore) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidCredentials
	}
	query := `
		SELECT * FROM user
		WHERE sessionToken = $token AND type::datetime(sessionTokenExpires) > time::now()
	`
	user, err := QueryOne[domain.User](ctx, s.db, query, map[string]any{"token": token})
	if err != nil {
		return nil, fmt.Errorf("failed to look up session token: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile applies the non-nil changes to the user record, rotates their
// session token and returns the authoritative post-update state.
func (s *UserStore) UpdateProfile(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.User, string, error) {
	assignments := make([]string, 0, 3)
	params := map[string]any{}
	if changes.Username != nil {
		assignments = append(assignments, "username = $username")
		params["username"] = *changes.Username
	}
	if changes.Email != nil {
		assignments = append(assignments, "email = $email")
		params["email"] = *changes.Email
	}
	if changes.Avatar != nil {
		assignments = append(assignments, "avatar = $avatar")
		params["avatar"] = *changes.Avatar
	}
	if len(assignments) == 0 {
		return nil, "", NewDBError(ErrInvalidInput, "no profile changes supplied")
	}

	query := fmt.Sprintf("UPDATE %s SET %s RETURN AFTER", id, strings.Join(assignments, ", "))
	updated, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, "", fmt.Errorf("failed to update profile: %w", err)
	}
	if updated == nil {
		return nil, "", domain.ErrNotFound
	}

	// Rotate the session token so the client must adopt the new one. An email
	// change invalidates any token tied to the previous identity.
	token, err := s.issueToken(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

// Delete removes the user record. The stored session token goes with it, so
// the token is invalidated implicitly.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewDBError(ErrInvalidInput, "user ID is required for delete")
	}
	return Execute(ctx, s.db, fmt.Sprintf("DELETE %s", id), nil)
}

// GenerateResetToken creates a secure reset token and sets its expiration.
func (s *UserStore) GenerateResetToken(ctx context.Context, email string) (string, error) {
	token, err := generateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	expires := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)

	query := `UPDATE user SET resetToken = $reset_token, resetTokenExpires = $expires WHERE email = $email RETURN AFTER`
	params := map[string]any{
		"email":       email,
		"reset_token": token,
		"expires":     expires,
	}

	updated, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return "", fmt.Errorf("failed to update user with reset token: %w", err)
	}
	if updated == nil {
		return "", NewDBError(ErrNotFound, "user not found")
	}

	return token, nil
}

// ResetPassword performs an atomic password reset and token invalidation.
func (s *UserStore) ResetPassword(ctx context.Context, token, newPassword string) (*domain.User, error) {
	query := `
		UPDATE user SET
			password = crypto::argon2::generate($password),
			resetToken = NONE,
			resetTokenExpires = NONE
		WHERE resetToken = $target_token AND type::datetime(resetTokenExpires) > time::now()
	`
	params := map[string]any{
		"target_token": token,
		"password":     newPassword,
	}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database error during password reset: %w", err)
	}
	if user == nil {
		return nil, errors.New("invalid or expired reset link")
	}

	return user, nil
}

// issueToken writes a fresh session token onto the user record and returns it.
func (s *UserStore) issueToken(ctx context.Context, id string) (string, error) {
	token, err := generateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("error generating session token: %w", err)
	}
	expires := time.Now().UTC().Add(sessionTokenTTL).Format(time.RFC3339)

	query := fmt.Sprintf("UPDATE %s SET sessionToken = $token, sessionTokenExpires = $expires", id)
	params := map[string]any{"token": token, "expires": expires}
	if err := Execute(ctx, s.db, query, params); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}
	return token, nil
}

// generateSecureToken creates a cryptographically secure random token.
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
