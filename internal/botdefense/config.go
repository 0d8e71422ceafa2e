package botdefense

import "strings"

// holds probe guard configuration
type Config struct {
	// whether the guard is active
	Enabled bool

	// paths that only scanners would request
	HoneypotPaths []string

	// paths that bypass the guard (health checks, etc.)
	ExemptPaths []string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		HoneypotPaths: []string{
			// wordpress
			"/wp-admin",
			"/wp-login.php",
			"/xmlrpc.php",

			// config/secrets
			"/.env",
			"/.git",
			"/config.json",
			"/secrets.json",
			"/.aws/credentials",

			// admin panels
			"/admin",
			"/phpmyadmin",

			// backups
			"/backup.sql",
			"/db.sql",

			// api probing
			"/api/admin",
			"/api/internal",
			"/api/users/dump",
			"/api/todos/export-all",
		},
		ExemptPaths: []string{
			"/",
			"/ready",
		},
	}
}

// checks if a path is a honeypot (prefix match)
func (c *Config) IsHoneypotPath(path string) bool {
	for _, hp := range c.HoneypotPaths {
		if path == hp || strings.HasPrefix(path, hp+"/") {
			return true
		}
	}

	return false
}

func (c *Config) IsExemptPath(path string) bool {
	for _, ep := range c.ExemptPaths {
		if path == ep {
			return true
		}
	}
	return false
}

// checks if the request path looks like probing
func IsSuspiciousPath(path string) bool {
	pathLower := strings.ToLower(path)

	suspiciousPatterns := []string{
		".php",
		".asp",
		".jsp",
		".cgi",
		"..%2f", // path traversal
		"../",
		"%00", // null byte
		"<script",
		"union+select",
	}

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(pathLower, pattern) {
			return true
		}
	}

	return false
}
