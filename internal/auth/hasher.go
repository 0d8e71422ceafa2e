package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// one-way password hashing backed by bcrypt
type Hasher struct {
	cost int
}

// creates a hasher; out of range costs fall back to bcrypt.DefaultCost
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// produces a salted digest; every call uses a fresh salt
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// reports whether password matches digest. an empty or corrupt digest never matches
func (h *Hasher) Verify(password, digest string) bool {
	if digest == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
