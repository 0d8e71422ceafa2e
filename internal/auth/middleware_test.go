package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "codeberg.org/tasklist/server/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(verifier Verifier) *gin.Engine {
	router := gin.New()
	router.GET("/protected", AuthMiddleware(verifier), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return router
}

func doRequest(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := newTestIssuer(t, time.Hour, time.Now)
	token, err := issuer.Issue(77)
	require.NoError(t, err)

	w := doRequest(newProtectedRouter(issuer), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":77}`, w.Body.String())
}

func TestAuthMiddleware_FailureModes(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	expired, err := newTestIssuer(t, time.Hour, fixedClock(issuedAt)).Issue(1)
	require.NoError(t, err)

	router := newProtectedRouter(newTestIssuer(t, time.Hour, time.Now))

	testCases := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing header", "", http.StatusUnauthorized, apperrors.CodeTokenMissing},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, apperrors.CodeTokenExpired},
		{"garbage", "Bearer not.a.jwt", http.StatusUnprocessableEntity, apperrors.CodeTokenMalformed},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnprocessableEntity, apperrors.CodeTokenMalformed},
		{"scheme only", "Bearer", http.StatusUnprocessableEntity, apperrors.CodeTokenMalformed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, tc.header)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Error)
		})
	}
}
