package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}), ErrConflict)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: pgCheckViolation}), ErrNoCredential)

	unavailable := mapError(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, unavailable, ErrUnavailable)
	assert.NotErrorIs(t, unavailable, ErrConflict)
}

func TestNewUser_Validate(t *testing.T) {
	assert.NoError(t, NewUser{Email: "a@x.com", PasswordHash: strPtr("digest")}.Validate())
	assert.NoError(t, NewUser{Email: "a@x.com", GoogleID: strPtr("g1")}.Validate())
	assert.ErrorIs(t, NewUser{Email: "a@x.com"}.Validate(), ErrNoCredential)
	assert.ErrorIs(t, NewUser{Email: "a@x.com", GoogleID: strPtr("")}.Validate(), ErrNoCredential)
	assert.Error(t, NewUser{PasswordHash: strPtr("digest")}.Validate())
}

func TestMemoryStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, NewUser{Email: "Alice@Example.com", PasswordHash: strPtr("digest")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.True(t, created.HasPassword())
	assert.Empty(t, created.ExternalID())

	byEmail, err := store.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, byID.Email)

	_, err = store.FindByGoogleID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Create(ctx, NewUser{Email: "a@x.com", GoogleID: strPtr("g1")})
	require.NoError(t, err)

	_, err = store.Create(ctx, NewUser{Email: "A@X.com", PasswordHash: strPtr("digest")})
	assert.ErrorIs(t, err, ErrConflict, "email uniqueness is case-insensitive")

	_, err = store.Create(ctx, NewUser{Email: "b@x.com", GoogleID: strPtr("g1")})
	assert.ErrorIs(t, err, ErrConflict, "google id must be unique")

	assert.Equal(t, 1, store.Count())
}

func TestMemoryStore_AttachGoogleID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	local, err := store.Create(ctx, NewUser{Email: "a@x.com", PasswordHash: strPtr("digest")})
	require.NoError(t, err)

	linked, err := store.AttachGoogleID(ctx, local.ID, "g1")
	require.NoError(t, err)
	assert.Equal(t, local.ID, linked.ID)
	assert.Equal(t, "g1", linked.ExternalID())

	again, err := store.AttachGoogleID(ctx, local.ID, "g1")
	require.NoError(t, err, "re-attaching the same id is idempotent")
	assert.Equal(t, local.ID, again.ID)

	_, err = store.AttachGoogleID(ctx, local.ID, "g2")
	assert.ErrorIs(t, err, ErrConflict, "stored google id is never overwritten")

	other, err := store.Create(ctx, NewUser{Email: "b@x.com", PasswordHash: strPtr("digest")})
	require.NoError(t, err)

	_, err = store.AttachGoogleID(ctx, other.ID, "g1")
	assert.ErrorIs(t, err, ErrConflict, "google id already belongs to another user")

	_, err = store.AttachGoogleID(ctx, 999, "g3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, NewUser{Email: "a@x.com", GoogleID: strPtr("g1")})
	require.NoError(t, err)

	*created.GoogleID = "tampered"
	created.Email = "tampered@x.com"

	stored, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "g1", stored.ExternalID())
	assert.Equal(t, "a@x.com", stored.Email)
}

func TestMemoryStore_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 16

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Create(ctx, NewUser{Email: "race@x.com", PasswordHash: strPtr(fmt.Sprintf("digest-%d", i))})
			results <- err
		}(i)
	}

	wg.Wait()
	close(results)

	var created, conflicts int
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrConflict):
			conflicts++
		}
	}

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, store.Count())
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, NewUser{Email: "a@x.com", GoogleID: strPtr("g1")})
	require.NoError(t, err)

	store.Delete(created.ID)

	_, err = store.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindByGoogleID(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}
