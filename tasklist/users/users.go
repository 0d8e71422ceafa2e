package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres error code for unique_violation
const pgUniqueViolation = "23505"

// postgres error code for check_violation
const pgCheckViolation = "23514"

// handles user database operations
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// creates a new user repository; timeout bounds every query
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Repository{db: db, timeout: timeout}
}

// finds a user by normalized email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.queryOne(ctx, queryFindByEmail, strings.ToLower(email))
}

// finds a user by google subject id
func (r *Repository) FindByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.queryOne(ctx, queryFindByGoogleID, googleID)
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, userID int64) (*User, error) {
	return r.queryOne(ctx, queryFindByID, userID)
}

// inserts a user; a duplicate email or google id yields ErrConflict
func (r *Repository) Create(ctx context.Context, u NewUser) (*User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	return r.queryOne(ctx, queryCreate, strings.ToLower(u.Email), u.PasswordHash, u.GoogleID)
}

// links a google id to an existing user inside a transaction
func (r *Repository) AttachGoogleID(ctx context.Context, userID int64, googleID string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	user, err := scanUser(tx.QueryRow(ctx, queryAttachGoogleID, googleID, userID))
	if errors.Is(err, ErrNotFound) {
		// zero rows: either the user vanished or a google id is already stored
		current, findErr := scanUser(tx.QueryRow(ctx, queryFindByID, userID))
		if findErr != nil {
			return nil, findErr
		}

		if current.ExternalID() == googleID {
			return current, nil
		}

		return nil, ErrConflict
	}

	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, query, args...))
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.CreatedAt,
	)

	if err != nil {
		return nil, mapError(err)
	}

	return &user, nil
}

// translates driver errors into store errors
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s", ErrNoCredential, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
