package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/tasklist/server/tasklist/users"
)

func TestResolve_CreatesOnceThenIdempotent(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	resolver := NewResolver(store)

	claims := Claims{Email: "Alice@Example.com", ExternalID: "g1", Name: "Alice"}

	first, created, err := resolver.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, "g1", first.ExternalID())

	second, created, err := resolver.Resolve(ctx, claims)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.Count())
}

func TestResolve_ExternalIDWinsOverEmail(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	resolver := NewResolver(store)

	googleID := "g1"
	existing, err := store.Create(ctx, users.NewUser{Email: "old@example.com", GoogleID: &googleID})
	require.NoError(t, err)

	// the provider now reports a different email for the same subject
	user, created, err := resolver.Resolve(ctx, Claims{Email: "new@example.com", ExternalID: "g1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, "old@example.com", user.Email)
	assert.Equal(t, 1, store.Count())
}

func TestResolve_LinksPasswordAccount(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	resolver := NewResolver(store)

	local, err := resolver.Register(ctx, "bob@example.com", "digest")
	require.NoError(t, err)

	linked, created, err := resolver.Resolve(ctx, Claims{Email: "BOB@example.com", ExternalID: "g2"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, local.ID, linked.ID, "user id is unchanged by linking")
	assert.Equal(t, "g2", linked.ExternalID())
	assert.True(t, linked.HasPassword(), "password remains usable")

	byGoogle, err := store.FindByGoogleID(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, local.ID, byGoogle.ID)
}

func TestResolve_ConflictingExternalID(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	resolver := NewResolver(store)

	_, _, err := resolver.Resolve(ctx, Claims{Email: "carol@example.com", ExternalID: "g1"})
	require.NoError(t, err)

	_, _, err = resolver.Resolve(ctx, Claims{Email: "carol@example.com", ExternalID: "g9"})
	assert.ErrorIs(t, err, users.ErrConflict)

	stored, err := store.FindByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, "g1", stored.ExternalID(), "stored external id is never overwritten")
}

func TestResolve_RejectsBlankEmail(t *testing.T) {
	resolver := NewResolver(users.NewMemoryStore())

	_, _, err := resolver.Resolve(context.Background(), Claims{Email: "  ", ExternalID: "g1"})
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = resolver.Register(context.Background(), "", "digest")
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := users.NewMemoryStore()
	resolver := NewResolver(store)

	_, err := resolver.Register(ctx, "dave@example.com", "digest")
	require.NoError(t, err)

	_, err = resolver.Register(ctx, "DAVE@example.com", "other")
	assert.ErrorIs(t, err, users.ErrConflict)
	assert.Equal(t, 1, store.Count())
}

func TestRegister_RequiresDigest(t *testing.T) {
	resolver := NewResolver(users.NewMemoryStore())

	_, err := resolver.Register(context.Background(), "erin@example.com", "")
	assert.ErrorIs(t, err, users.ErrNoCredential)
}

// lets a competing writer insert its row right before the first Create
type racingStore struct {
	*users.MemoryStore
	once       sync.Once
	competitor users.NewUser
}

func (s *racingStore) Create(ctx context.Context, u users.NewUser) (*users.User, error) {
	s.once.Do(func() {
		_, _ = s.MemoryStore.Create(ctx, s.competitor)
	})

	return s.MemoryStore.Create(ctx, u)
}

func TestResolve_LosesInsertRace(t *testing.T) {
	googleID := "g1"
	passwordHash := "digest"

	tests := []struct {
		name         string
		competitor   users.NewUser
		wantPassword bool
	}{
		{"same claims", users.NewUser{Email: "frank@example.com", GoogleID: &googleID}, false},
		{"password registration", users.NewUser{Email: "frank@example.com", PasswordHash: &passwordHash}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := &racingStore{MemoryStore: users.NewMemoryStore(), competitor: tt.competitor}
			resolver := NewResolver(store)

			user, created, err := resolver.Resolve(ctx, Claims{Email: "frank@example.com", ExternalID: "g1"})
			require.NoError(t, err)
			assert.False(t, created, "the competing writer created the row")
			assert.Equal(t, 1, store.Count())
			assert.Equal(t, "g1", user.ExternalID())
			assert.Equal(t, tt.wantPassword, user.HasPassword())

			stored, err := store.FindByEmail(ctx, "frank@example.com")
			require.NoError(t, err)
			assert.Equal(t, stored.ID, user.ID)
		})
	}
}

func TestResolve_LosesInsertRaceToOtherEmail(t *testing.T) {
	googleID := "g1"
	store := &racingStore{
		MemoryStore: users.NewMemoryStore(),
		competitor:  users.NewUser{Email: "elsewhere@example.com", GoogleID: &googleID},
	}
	resolver := NewResolver(store)

	_, _, err := resolver.Resolve(context.Background(), Claims{Email: "grace@example.com", ExternalID: "g1"})
	assert.ErrorIs(t, err, users.ErrConflict)
	assert.Equal(t, 1, store.Count())
}

func TestResolve_ConcurrentSameClaims(t *testing.T) {
	const callers = 16

	for round := 0; round < 50; round++ {
		ctx := context.Background()
		store := users.NewMemoryStore()
		resolver := NewResolver(store)
		claims := Claims{Email: "heidi@example.com", ExternalID: "g1"}

		ids := make([]int64, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user, _, err := resolver.Resolve(ctx, claims)
				errs[i] = err
				if err == nil {
					ids[i] = user.ID
				}
			}(i)
		}
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.Equal(t, ids[0], ids[i])
		}

		require.Equal(t, 1, store.Count())

		stored, err := store.FindByGoogleID(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, ids[0], stored.ID)
	}
}

func TestResolve_ConcurrentWithRegister(t *testing.T) {
	for round := 0; round < 50; round++ {
		ctx := context.Background()
		store := users.NewMemoryStore()
		resolver := NewResolver(store)

		var (
			wg          sync.WaitGroup
			registered  *users.User
			registerErr error
			resolved    *users.User
			resolveErr  error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			registered, registerErr = resolver.Register(ctx, "ivan@example.com", "digest")
		}()
		go func() {
			defer wg.Done()
			resolved, _, resolveErr = resolver.Resolve(ctx, Claims{Email: "ivan@example.com", ExternalID: "g1"})
		}()
		wg.Wait()

		require.NoError(t, resolveErr)
		require.Equal(t, 1, store.Count())

		if registerErr != nil {
			// the external identity created the row first
			assert.ErrorIs(t, registerErr, users.ErrConflict)
		} else {
			assert.Equal(t, registered.ID, resolved.ID)
		}

		stored, err := store.FindByEmail(ctx, "ivan@example.com")
		require.NoError(t, err)
		assert.Equal(t, resolved.ID, stored.ID)
		assert.Equal(t, "g1", stored.ExternalID())
	}
}
