package ratelimit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_BlocksAfterLimit(t *testing.T) {
	mw, err := Middleware("2-M", nil)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/api/login", mw, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestMiddleware_PerClient(t *testing.T) {
	mw, err := Middleware("1-M", nil)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/api/login", mw, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, addr := range []string{"203.0.113.1:1", "203.0.113.2:1"} {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = addr

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, addr)
	}
}

func TestMiddleware_RotatingForwardedForFromUntrustedPeer(t *testing.T) {
	mw, err := Middleware("2-M", nil)
	require.NoError(t, err)

	router := gin.New()
	require.NoError(t, router.SetTrustedProxies(nil))
	router.POST("/api/register", mw, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	limited := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Equal(t, 8, limited)
}

func TestMiddleware_InvalidRate(t *testing.T) {
	_, err := Middleware("lots", nil)
	assert.Error(t, err)
}
