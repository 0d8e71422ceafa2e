package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"codeberg.org/tasklist/server/internal/auth"
	"codeberg.org/tasklist/server/internal/authcodes"
	"codeberg.org/tasklist/server/internal/identity"
	"codeberg.org/tasklist/server/internal/logger"
	"codeberg.org/tasklist/server/internal/notifications"
	"codeberg.org/tasklist/server/tasklist/users"
)

// collaborators for Service; all are required except Notifier
type Deps struct {
	Users             users.Store
	Resolver          *identity.Resolver
	Hasher            *auth.Hasher
	Tokens            *auth.TokenIssuer
	Provider          Provider
	Codes             authcodes.Store
	Notifier          *notifications.Dispatcher
	MinPasswordLength int
}

// orchestrates registration, login and the external identity flows
type Service struct {
	users       users.Store
	resolver    *identity.Resolver
	hasher      *auth.Hasher
	tokens      *auth.TokenIssuer
	provider    Provider
	codes       authcodes.Store
	notifier    *notifications.Dispatcher
	validate    *validator.Validate
	minPassword int
	dummyDigest string
}

func NewService(deps Deps) (*Service, error) {
	if deps.Users == nil || deps.Resolver == nil || deps.Hasher == nil || deps.Tokens == nil ||
		deps.Provider == nil || deps.Codes == nil {
		return nil, errors.New("accounts: missing dependency")
	}

	minPassword := deps.MinPasswordLength
	if minPassword <= 0 {
		minPassword = defaultMinPasswordLength
	}

	// compared against on unknown emails so both login failures cost one bcrypt run
	dummy, err := deps.Hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Service{
		users:       deps.Users,
		resolver:    deps.Resolver,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		provider:    deps.Provider,
		codes:       deps.Codes,
		notifier:    deps.Notifier,
		validate:    validator.New(),
		minPassword: minPassword,
		dummyDigest: dummy,
	}, nil
}

// creates a password account and signs the user in
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	if err := s.validateEmail(email); err != nil {
		return nil, err
	}

	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.resolver.Register(ctx, email, digest)
	if err != nil {
		return nil, err
	}

	session, err := s.issue(user, true)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("user registered", "user_id", user.ID)

	s.notifier.Dispatch(ctx, notifications.Event{
		Type:   notifications.EventUserRegistered,
		UserID: user.ID,
		Email:  user.Email,
	})

	return session, nil
}

// checks a password; unknown email and wrong password are indistinguishable
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	if email == "" {
		return nil, &InputError{Field: "email", Message: "email is required"}
	}

	if password == "" {
		return nil, &InputError{Field: "password", Message: "password is required"}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		s.hasher.Verify(password, s.dummyDigest)
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	if !user.HasPassword() {
		// external-only account
		s.hasher.Verify(password, s.dummyDigest)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, *user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user, false)
}

// loads the user behind a verified bearer token
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*users.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *Service) issue(user *users.User, created bool) (*Session, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{Token: token, User: user, Created: created}, nil
}

func (s *Service) validateEmail(email string) error {
	if email == "" {
		return &InputError{Field: "email", Message: "email is required"}
	}

	if len(email) > maxEmailLength || s.validate.Var(email, "email") != nil {
		return &InputError{Field: "email", Message: "invalid email format"}
	}

	return nil
}

func (s *Service) validatePassword(password string) error {
	if password == "" {
		return &InputError{Field: "password", Message: "password is required"}
	}

	if utf8.RuneCountInString(password) < s.minPassword {
		return &InputError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters long", s.minPassword),
		}
	}

	if len(password) > maxPasswordBytes {
		return &InputError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes),
		}
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
