package idp

import "time"

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleJWKSURL     = "https://www.googleapis.com/oauth2/v3/certs"

	defaultTimeout           = 10 * time.Second
	defaultRequestsPerSecond = 10
	defaultBurst             = 5
	minJWKSRefreshInterval   = 15 * time.Minute
)

// issuers google signs ID tokens with
var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

var defaultScopes = []string{"openid", "email", "profile"}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// endpoints default to google's when empty
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	JWKSURL     string
	Issuers     []string

	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func (c Config) withDefaults() Config {
	if c.AuthURL == "" {
		c.AuthURL = googleAuthURL
	}

	if c.TokenURL == "" {
		c.TokenURL = googleTokenURL
	}

	if c.UserInfoURL == "" {
		c.UserInfoURL = googleUserInfoURL
	}

	if c.JWKSURL == "" {
		c.JWKSURL = googleJWKSURL
	}

	if len(c.Issuers) == 0 {
		c.Issuers = googleIssuers
	}

	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = defaultRequestsPerSecond
	}

	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}

	return c
}
