package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codeberg.org/tasklist/server/internal/logger"
	"codeberg.org/tasklist/server/tasklist/users"
)

// maps verified claims onto exactly one stored user
type Resolver struct {
	store users.Store
}

func NewResolver(store users.Store) *Resolver {
	return &Resolver{store: store}
}

// finds, links or creates the user for the claims. the bool reports whether a row was created
func (r *Resolver) Resolve(ctx context.Context, claims Claims) (*users.User, bool, error) {
	email := normalizeEmail(claims.Email)
	if email == "" {
		return nil, false, ErrInvalidClaims
	}

	if claims.ExternalID != "" {
		user, err := r.store.FindByGoogleID(ctx, claims.ExternalID)
		if err == nil {
			return user, false, nil
		}

		if !errors.Is(err, users.ErrNotFound) {
			return nil, false, err
		}
	}

	user, err := r.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		linked, err := r.link(ctx, user, claims.ExternalID)
		return linked, false, err
	case !errors.Is(err, users.ErrNotFound):
		return nil, false, err
	}

	created, err := r.create(ctx, users.NewUser{Email: email, GoogleID: &claims.ExternalID})
	if errors.Is(err, users.ErrConflict) {
		// a concurrent writer won the insert; resolve against the row it created
		return r.resolveAfterRace(ctx, email, claims.ExternalID)
	}

	if err != nil {
		return nil, false, err
	}

	logger.FromContext(ctx).Info("user created from external identity", "user_id", created.ID)

	return created, true, nil
}

// creates a local account with a password digest
func (r *Resolver) Register(ctx context.Context, email, passwordHash string) (*users.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidClaims
	}

	return r.create(ctx, users.NewUser{Email: email, PasswordHash: &passwordHash})
}

// attaches the external id to an existing user unless one is already stored
func (r *Resolver) link(ctx context.Context, user *users.User, externalID string) (*users.User, error) {
	if externalID == "" {
		return user, nil
	}

	switch stored := user.ExternalID(); {
	case stored == externalID:
		return user, nil
	case stored != "":
		return nil, fmt.Errorf("%w: email is linked to a different external identity", users.ErrConflict)
	}

	linked, err := r.store.AttachGoogleID(ctx, user.ID, externalID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("external identity linked", "user_id", linked.ID)

	return linked, nil
}

func (r *Resolver) resolveAfterRace(ctx context.Context, email, externalID string) (*users.User, bool, error) {
	user, err := r.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// the conflicting row holds the external id under another email
			return nil, false, fmt.Errorf("%w: external identity belongs to another user", users.ErrConflict)
		}
		return nil, false, err
	}

	linked, err := r.link(ctx, user, externalID)
	return linked, false, err
}

func (r *Resolver) create(ctx context.Context, u users.NewUser) (*users.User, error) {
	if u.GoogleID != nil && *u.GoogleID == "" {
		u.GoogleID = nil
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return r.store.Create(ctx, u)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
