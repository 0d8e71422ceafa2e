package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/tasklist/server/internal/config"
	"codeberg.org/tasklist/server/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// sends one login per forwarded address from a single socket address
func loginCodes(t *testing.T, cfg *config.Config, attempts int) []int {
	t.Helper()

	router, err := newRouter(cfg)
	require.NoError(t, err)

	limit, err := ratelimit.Middleware("2-M", nil)
	require.NoError(t, err)

	router.POST("/api/login", limit, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, attempts)
	for i := 0; i < attempts; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i+1))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	return codes
}

func TestNewRouter_IgnoresForwardedForByDefault(t *testing.T) {
	codes := loginCodes(t, &config.Config{}, 4)

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestNewRouter_HonorsForwardedForFromTrustedProxy(t *testing.T) {
	codes := loginCodes(t, &config.Config{TrustedProxies: []string{"203.0.113.0/24"}}, 4)

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK, http.StatusOK}, codes)
}

func TestNewRouter_InvalidTrustedProxy(t *testing.T) {
	_, err := newRouter(&config.Config{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}
