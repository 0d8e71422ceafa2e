package authcodes

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// unknown, expired or already redeemed
var ErrInvalidCode = errors.New("invalid or expired exchange code")

const codeBytes = 32

// single-use codes that stand in for a bearer token on the OAuth redirect
type Store interface {
	// stores a fresh code for the user and returns it
	Issue(ctx context.Context, userID int64) (string, error)

	// returns the user id for the code and deletes it atomically
	Redeem(ctx context.Context, code string) (int64, error)
}

// 32 random bytes, url-safe so it can travel in a query string
func newCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate exchange code: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
