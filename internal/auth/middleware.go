package auth

import (
	"errors"
	"strings"

	apperrors "codeberg.org/tasklist/server/internal/errors"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// validates bearer tokens and adds the user id to the context
func AuthMiddleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var userID int64

			userID, err = verifier.Verify(token)
			if err == nil {
				c.Set(userIDKey, userID)
				c.Next()
				return
			}
		}

		switch {
		case errors.Is(err, ErrTokenMissing):
			apperrors.AuthFailure(c, apperrors.CodeTokenMissing, "authorization token is required")
		case errors.Is(err, ErrTokenExpired):
			apperrors.AuthFailure(c, apperrors.CodeTokenExpired, "token has expired")
		default:
			apperrors.Unprocessable(c, apperrors.CodeTokenMalformed, "invalid token")
		}
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}

	userID, ok := value.(int64)
	return userID, ok
}

// parses "Bearer <token>"; an absent header is ErrTokenMissing
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrTokenMissing
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrTokenMalformed
	}

	return parts[1], nil
}
