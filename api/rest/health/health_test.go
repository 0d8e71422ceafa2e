package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	router := gin.New()
	router.GET("/", Handler)
	router.GET("/api", InfoHandler)
	router.GET("/ready", ReadyHandler(healthy))
	router.GET("/ready-down", ReadyHandler(down))

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/api", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/ready-down", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.status, w.Code, tt.path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))

	var info InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Contains(t, info.Endpoints, "/api/todos")
}
