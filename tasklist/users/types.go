package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrConflict    = errors.New("user already exists")
	ErrUnavailable = errors.New("user store unavailable")

	// a user must keep at least one way to log in
	ErrNoCredential = errors.New("user has neither password nor external identity")
)

// represents an authenticated principal
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	GoogleID     *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// data needed to insert a user
type NewUser struct {
	Email        string
	PasswordHash *string
	GoogleID     *string
}

// persistence operations consumed by the identity subsystem
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*User, error)
	FindByID(ctx context.Context, userID int64) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)

	// sets google_id on a user that has none; ErrConflict if one is already stored
	// or the id belongs to another user
	AttachGoogleID(ctx context.Context, userID int64, googleID string) (*User, error)
}

// reports whether a password digest is stored
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// returns the stored external id or an empty string
func (u *User) ExternalID() string {
	if u.GoogleID == nil {
		return ""
	}

	return *u.GoogleID
}

// checks the write-time invariants of a new row
func (n NewUser) Validate() error {
	if n.Email == "" {
		return errors.New("email is required")
	}

	hasPassword := n.PasswordHash != nil && *n.PasswordHash != ""
	hasGoogle := n.GoogleID != nil && *n.GoogleID != ""

	if !hasPassword && !hasGoogle {
		return ErrNoCredential
	}

	return nil
}
