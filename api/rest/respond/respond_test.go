package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/tasklist/server/internal/accounts"
	"codeberg.org/tasklist/server/internal/auth"
	apperrors "codeberg.org/tasklist/server/internal/errors"
	"codeberg.org/tasklist/server/internal/idp"
	"codeberg.org/tasklist/server/tasklist/tasks"
	"codeberg.org/tasklist/server/tasklist/users"
)

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"input", &accounts.InputError{Field: "email", Message: "invalid email format"}, http.StatusBadRequest, apperrors.CodeValidationError},
		{"credentials", accounts.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.CodeInvalidCredentials},
		{"conflict", fmt.Errorf("create: %w", users.ErrConflict), http.StatusConflict, apperrors.CodeConflict},
		{"token missing", auth.ErrTokenMissing, http.StatusUnauthorized, apperrors.CodeTokenMissing},
		{"token expired", auth.ErrTokenExpired, http.StatusUnauthorized, apperrors.CodeTokenExpired},
		{"token malformed", auth.ErrTokenMalformed, http.StatusUnprocessableEntity, apperrors.CodeTokenMalformed},
		{"state", accounts.ErrInvalidState, http.StatusBadRequest, apperrors.CodeInvalidState},
		{"exchange code", accounts.ErrInvalidExchangeCode, http.StatusBadRequest, apperrors.CodeInvalidExchangeCode},
		{"audience", idp.ErrInvalidAudience, http.StatusBadRequest, apperrors.CodeInvalidIdentity},
		{"expired id token", idp.ErrIDTokenExpired, http.StatusBadRequest, apperrors.CodeInvalidIdentity},
		{"unverified email", idp.ErrEmailNotVerified, http.StatusBadRequest, apperrors.CodeProviderError},
		{"provider down", idp.ErrProviderUnreachable, http.StatusBadRequest, apperrors.CodeProviderError},
		{"user missing", users.ErrNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{"task missing", tasks.ErrTaskNotFound, http.StatusNotFound, apperrors.CodeNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, apperrors.CodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Error(c, tt.err)

			assert.Equal(t, tt.status, w.Code)

			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
			assert.NotContains(t, body.Message, "boom")
		})
	}
}

func TestError_ConflictMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	conflicts := []error{
		fmt.Errorf("create: %w", users.ErrConflict),
		fmt.Errorf("%w: email is linked to a different external identity", users.ErrConflict),
	}

	for _, err := range conflicts {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		Error(c, err)

		var body apperrors.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "this email or sign-in identity is already in use by another account", body.Message)
		assert.NotContains(t, body.Message, "external identity")
	}
}
