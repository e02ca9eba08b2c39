package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents the core user model in the application domain.
// Avatar holds the public URL of the user's current avatar image, or is empty
// when none has been uploaded.
type User struct {
	ID                *surrealmodels.RecordID `json:"id,omitempty"`
	Username          string                  `json:"username"`
	Email             string                  `json:"email"`
	Avatar            string                  `json:"avatar,omitempty"`
	Password          string                  `json:"password,omitempty"`
	ResetToken        *string                 `json:"resetToken,omitempty"`
	ResetTokenExpires *string                 `json:"resetTokenExpires,omitempty"`
}

// ProfileChanges carries the editable profile fields for a partial update.
// Nil fields are left untouched.
type ProfileChanges struct {
	Username *string
	Email    *string
	Avatar   *string
}

// UserRepository defines the contract for user data storage and session token
// management. It lives in the domain because it's a requirement OF the domain,
// not of the database implementation.
type UserRepository interface {
	SignUp(ctx context.Context, user *User, password string) (string, error)
	SignIn(ctx context.Context, user *User, password string) (string, error)
	// Authenticate validates a session token and returns the user it belongs to.
	Authenticate(ctx context.Context, token string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// ListUsers returns every registered user, for roster seeding.
	ListUsers(ctx context.Context) ([]*User, error)
	// UpdateProfile applies the given changes to the user and rotates their
	// session token. The returned user is the server-authoritative state after
	// the update; callers must adopt it wholesale.
	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*User, string, error)
	// Delete removes the user record and invalidates their session token.
	Delete(ctx context.Context, id string) error
	GenerateResetToken(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*User, error)
}
