package idp

import (
	"encoding/json"
	"errors"
	"strconv"
)

var (
	ErrProviderUnreachable = errors.New("identity provider unreachable")
	ErrProviderRejected    = errors.New("identity provider rejected the request")
	ErrEmailNotVerified    = errors.New("email address is not verified")

	ErrInvalidIssuer    = errors.New("id token issuer not accepted")
	ErrInvalidAudience  = errors.New("id token audience mismatch")
	ErrInvalidSignature = errors.New("id token signature invalid")
	ErrIDTokenExpired   = errors.New("id token expired")
	ErrMalformedIDToken = errors.New("id token malformed")
)

// verified identity reported by the provider
type Profile struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// userinfo v2 response
type userInfoResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// accepts both true and "true"; google has sent either in email_verified
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}

	*b = flexBool(v)
	return nil
}
