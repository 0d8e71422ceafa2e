package accounts

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"codeberg.org/tasklist/server/internal/idp"
	"codeberg.org/tasklist/server/tasklist/users"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidState        = errors.New("oauth state mismatch")
	ErrInvalidExchangeCode = errors.New("invalid or expired exchange code")
)

const (
	defaultMinPasswordLength = 6

	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	maxEmailLength   = 254
)

// a request field that failed validation
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// what every successful authentication returns
type Session struct {
	Token   string
	User    *users.User
	Created bool
}

// the identity provider operations the orchestrator needs
type Provider interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, accessToken string) (*idp.Profile, error)
	VerifyIDToken(ctx context.Context, raw string) (*idp.Profile, error)
}
