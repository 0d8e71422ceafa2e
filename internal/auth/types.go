package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// issuer claim stamped on every bearer token
const tokenIssuer = "tasklist"

var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// represents bearer token claims; the subject is the decimal user id
type Claims struct {
	jwt.RegisteredClaims
}

// verifies bearer tokens and recovers the user id
type Verifier interface {
	Verify(token string) (int64, error)
}
