package respond

import (
	"errors"

	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/internal/accounts"
	"codeberg.org/tasklist/server/internal/auth"
	apperrors "codeberg.org/tasklist/server/internal/errors"
	"codeberg.org/tasklist/server/internal/idp"
	"codeberg.org/tasklist/server/internal/logger"
	"codeberg.org/tasklist/server/tasklist/tasks"
	"codeberg.org/tasklist/server/tasklist/users"
)

// identity token failures; the cause is logged, the client only sees invalid_identity_token
var identityTokenErrors = []error{
	idp.ErrInvalidIssuer,
	idp.ErrInvalidAudience,
	idp.ErrInvalidSignature,
	idp.ErrIDTokenExpired,
	idp.ErrMalformedIDToken,
}

// writes the response for a domain error. every handler funnels failures through here
func Error(c *gin.Context, err error) {
	var inputErr *accounts.InputError

	switch {
	case errors.As(err, &inputErr):
		apperrors.ValidationError(c, inputErr.Field, inputErr.Message)

	case errors.Is(err, accounts.ErrInvalidCredentials):
		apperrors.AuthFailure(c, apperrors.CodeInvalidCredentials, "invalid email or password")

	case errors.Is(err, users.ErrConflict):
		apperrors.Conflict(c, "this email or sign-in identity is already in use by another account")

	case errors.Is(err, auth.ErrTokenMissing):
		apperrors.AuthFailure(c, apperrors.CodeTokenMissing, "authorization token is required")

	case errors.Is(err, auth.ErrTokenExpired):
		apperrors.AuthFailure(c, apperrors.CodeTokenExpired, "token has expired")

	case errors.Is(err, auth.ErrTokenMalformed):
		apperrors.Unprocessable(c, apperrors.CodeTokenMalformed, "invalid token")

	case errors.Is(err, accounts.ErrInvalidState):
		untrusted(c, err)
		apperrors.BadRequestCode(c, apperrors.CodeInvalidState, "oauth state mismatch")

	case errors.Is(err, accounts.ErrInvalidExchangeCode):
		untrusted(c, err)
		apperrors.BadRequestCode(c, apperrors.CodeInvalidExchangeCode, "invalid or expired exchange code")

	case isIdentityTokenError(err):
		untrusted(c, err)
		apperrors.BadRequestCode(c, apperrors.CodeInvalidIdentity, "invalid identity token")

	case errors.Is(err, idp.ErrEmailNotVerified):
		untrusted(c, err)
		apperrors.BadRequestCode(c, apperrors.CodeProviderError, "email address is not verified")

	case errors.Is(err, idp.ErrProviderUnreachable), errors.Is(err, idp.ErrProviderRejected):
		untrusted(c, err)
		apperrors.BadRequestCode(c, apperrors.CodeProviderError, "identity provider authentication failed")

	case errors.Is(err, users.ErrNotFound):
		apperrors.NotFound(c, "user")

	case errors.Is(err, tasks.ErrTaskNotFound):
		apperrors.NotFound(c, "task")

	default:
		apperrors.InternalError(c, "internal server error", err)
	}
}

func isIdentityTokenError(err error) bool {
	for _, target := range identityTokenErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// external trust failures are logged through the request-scoped logger (carries request_id) and never echoed
func untrusted(c *gin.Context, err error) {
	logger.FromContext(c.Request.Context()).Warn("external authentication failed",
		"path", c.FullPath(),
		"error", err,
	)
}
