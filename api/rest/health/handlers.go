package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/internal/logger"
)

// anything that can report database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

var endpoints = []string{
	"/api/register",
	"/api/login",
	"/api/auth/google",
	"/api/auth/google/callback",
	"/api/auth/exchange",
	"/api/auth/google-verify",
	"/api/verify-token",
	"/api/me",
	"/api/todos",
	"/api/todos/stats",
	"/api/todos/bulk-update",
}

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Message: "Todo API is running!",
		Status:  "healthy",
	})
}

// checks the database within a short deadline
func ReadyHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("readiness check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable", Database: "down"})
			return
		}

		c.JSON(http.StatusOK, ReadyResponse{Status: "ready", Database: "up"})
	}
}

// describes the API
func InfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Message:   "Todo API v1.0",
		Endpoints: endpoints,
	})
}
