package idp

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// claims carried by a google ID token
type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	Name          string   `json:"name"`
}

// verifies a provider-signed ID token and returns its profile.
// nothing in the token is trusted until signature, audience and issuer all pass
func (c *Client) VerifyIDToken(ctx context.Context, raw string) (*Profile, error) {
	if raw == "" {
		return nil, ErrMalformedIDToken
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(c.config.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &idTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, c.keyFunc(ctx)); err != nil {
		return nil, classifyTokenError(err)
	}

	if !slices.Contains(c.config.Issuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIssuer, claims.Issuer)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrMalformedIDToken)
	}

	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &Profile{
		Subject:       claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: true,
	}, nil
}

// resolves the signing key by kid, forcing one refresh when the kid is unknown (key rotation)
func (c *Client) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrMalformedIDToken)
		}

		set, err := c.keys.Fetch(ctx, c.config.JWKSURL)
		if err != nil {
			return nil, fmt.Errorf("%w: jwks fetch: %v", ErrProviderUnreachable, err)
		}

		key, ok := set.LookupKeyID(kid)
		if !ok {
			set, err = c.keys.Refresh(ctx, c.config.JWKSURL)
			if err != nil {
				return nil, fmt.Errorf("%w: jwks refresh: %v", ErrProviderUnreachable, err)
			}

			if key, ok = set.LookupKeyID(kid); !ok {
				return nil, fmt.Errorf("%w: unknown key id %q", ErrInvalidSignature, kid)
			}
		}

		var pub rsa.PublicKey
		if err := key.Raw(&pub); err != nil {
			return nil, fmt.Errorf("%w: key %q is not an RSA public key", ErrInvalidSignature, kid)
		}

		return &pub, nil
	}
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrProviderUnreachable):
		return err
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrMalformedIDToken):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedIDToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrIDTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidAudience
	default:
		return fmt.Errorf("%w: %v", ErrMalformedIDToken, err)
	}
}
