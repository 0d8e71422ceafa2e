package identity

import "errors"

var ErrInvalidClaims = errors.New("claims are missing an email")

// identity facts already verified by a credential check or the provider
type Claims struct {
	Email      string
	ExternalID string
	Name       string
}
