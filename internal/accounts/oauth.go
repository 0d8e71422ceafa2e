package accounts

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"codeberg.org/tasklist/server/internal/authcodes"
	"codeberg.org/tasklist/server/internal/identity"
	"codeberg.org/tasklist/server/internal/idp"
	"codeberg.org/tasklist/server/internal/logger"
	"codeberg.org/tasklist/server/internal/notifications"
)

// starts the redirect flow; the caller must persist state and compare it on callback
func (s *Service) BeginOAuth(_ context.Context) (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}

	state := base64.RawURLEncoding.EncodeToString(buf)

	return s.provider.AuthorizationURL(state), state, nil
}

// compares the stored state against the one echoed by the provider
func CheckState(expected, got string) error {
	if expected == "" || got == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return ErrInvalidState
	}

	return nil
}

// finishes the redirect flow and returns a one-time exchange code for the frontend
func (s *Service) CompleteOAuth(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", &InputError{Field: "code", Message: "authorization code is required"}
	}

	token, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", err
	}

	profile, err := s.provider.FetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return "", err
	}

	session, err := s.signInWithProfile(ctx, profile)
	if err != nil {
		return "", err
	}

	exchangeCode, err := s.codes.Issue(ctx, session.User.ID)
	if err != nil {
		return "", fmt.Errorf("failed to store exchange code: %w", err)
	}

	return exchangeCode, nil
}

// trades a one-time exchange code for a bearer token
func (s *Service) RedeemExchangeCode(ctx context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, &InputError{Field: "code", Message: "exchange code is required"}
	}

	userID, err := s.codes.Redeem(ctx, code)
	if errors.Is(err, authcodes.ErrInvalidCode) {
		return nil, ErrInvalidExchangeCode
	}

	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issue(user, false)
}

// signs in with a provider-issued ID token posted by the frontend
func (s *Service) VerifyIdentityToken(ctx context.Context, credential string) (*Session, error) {
	if credential == "" {
		return nil, &InputError{Field: "credential", Message: "credential is required"}
	}

	profile, err := s.provider.VerifyIDToken(ctx, credential)
	if err != nil {
		return nil, err
	}

	return s.signInWithProfile(ctx, profile)
}

func (s *Service) signInWithProfile(ctx context.Context, profile *idp.Profile) (*Session, error) {
	user, created, err := s.resolver.Resolve(ctx, identity.Claims{
		Email:      profile.Email,
		ExternalID: profile.Subject,
		Name:       profile.Name,
	})
	if err != nil {
		return nil, err
	}

	if created {
		logger.FromContext(ctx).Info("user registered via provider", "user_id", user.ID)

		s.notifier.Dispatch(ctx, notifications.Event{
			Type:   notifications.EventUserRegistered,
			UserID: user.ID,
			Email:  user.Email,
			Data:   map[string]any{"name": profile.Name, "provider": "google"},
		})
	}

	return s.issue(user, created)
}
