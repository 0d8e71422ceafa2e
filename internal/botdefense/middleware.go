package botdefense

import (
	"github.com/gin-gonic/gin"

	apperrors "codeberg.org/tasklist/server/internal/errors"
	"codeberg.org/tasklist/server/internal/logger"
)

// answers scanner probes with a plain 404 before they reach routing or auth
type Guard struct {
	config *Config
}

func New(config *Config) *Guard {
	if config == nil {
		config = DefaultConfig()
	}

	return &Guard{config: config}
}

func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.config.Enabled {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if g.config.IsExemptPath(path) {
			c.Next()
			return
		}

		var reason string

		switch {
		case g.config.IsHoneypotPath(path):
			reason = "honeypot"
		case IsSuspiciousPath(c.Request.URL.RawPath) || IsSuspiciousPath(path) || IsSuspiciousPath(c.Request.URL.RawQuery):
			reason = "suspicious_path"
		default:
			c.Next()
			return
		}

		logger.FromContext(c.Request.Context()).Warn("probe blocked",
			"reason", reason,
			"ip", c.ClientIP(),
			"path", path,
			"user_agent", c.Request.UserAgent(),
		)

		apperrors.NotFound(c, "")
	}
}
