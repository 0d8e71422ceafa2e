package authcodes

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	a, err := newCode()
	require.NoError(t, err)

	b, err := newCode()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43, "32 bytes in unpadded base64url")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

func TestMemoryStore_SingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	code, err := store.Issue(ctx, 42)
	require.NoError(t, err)

	userID, err := store.Redeem(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	_, err = store.Redeem(ctx, code)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = store.Redeem(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	code, err := store.Issue(ctx, 7)
	require.NoError(t, err)

	now = now.Add(time.Minute)

	_, err = store.Redeem(ctx, code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestMemoryStore_ConcurrentRedeem(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	code, err := store.Issue(ctx, 1)
	require.NoError(t, err)

	const workers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Redeem(ctx, code); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, success)
}

// runs against a real redis when TEST_REDIS_URL is set
func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() }) //nolint:errcheck

	ctx := context.Background()
	store := NewRedisStore(client, time.Minute)

	code, err := store.Issue(ctx, 99)
	require.NoError(t, err)

	userID, err := store.Redeem(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(99), userID)

	_, err = store.Redeem(ctx, code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}
