package config

import "time"

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	DatabaseURL string
	DBTimeout   time.Duration

	// optional; in-memory stores are used when empty
	RedisURL string

	JWTSecret     string
	JWTTTL        time.Duration
	SessionSecret string
	BcryptCost    int

	MinPasswordLength int
	AuthRateLimit     string

	GoogleClientID      string
	GoogleClientSecret  string
	ProviderTimeout     time.Duration
	FrontendCallbackURL string
	ExchangeCodeTTL     time.Duration

	CORSOrigins []string

	// proxies allowed to set X-Forwarded-For; none by default so the
	// rate limiter keys on the socket address
	TrustedProxies []string

	// rejects scanner probes before routing
	ProbeGuardEnabled bool

	// optional; notifications are only logged when empty
	KafkaBrokers []string
	KafkaTopic   string
}

// true when running with production hardening (secure cookies, JSON logs)
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// callback URL registered with the identity provider
func (c *Config) GoogleRedirectURL() string {
	return c.BaseURL + "/api/auth/google/callback"
}
