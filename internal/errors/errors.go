package errors

import (
	"net/http"
	"strconv"

	"codeberg.org/tasklist/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Pass domain errors to respond.Error(), which maps every error kind to one of the
//     helpers below. The helpers handle both logging and the HTTP response.
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never log and respond for the same error
//
// For services/repositories/internal packages:
//   - Return sentinel errors or wrap them with fmt.Errorf("context: %w", err)
//   - Let the response layer decide how to log and respond

// standard error codes
const (
	CodeUnauthorized        = "unauthorized"
	CodeNotFound            = "not_found"
	CodeValidationError     = "validation_error"
	CodeServerError         = "server_error"
	CodeBadRequest          = "bad_request"
	CodeConflict            = "conflict"
	CodeTooManyRequests     = "too_many_requests"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeTokenMissing        = "token_missing"
	CodeTokenExpired        = "token_expired"
	CodeTokenMalformed      = "token_malformed"
	CodeProviderError       = "provider_error"
	CodeInvalidIdentity     = "invalid_identity_token"
	CodeInvalidExchangeCode = "invalid_exchange_code"
	CodeInvalidState        = "invalid_state"
)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 401 with a specific auth failure code
func AuthFailure(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// returns a 422 for a token that could not be parsed or verified
func Unprocessable(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

// returns a 400 with a machine-readable code and no internal details
func BadRequestCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, field, message string) {
	if message == "" {
		message = "validation failed"
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Field:   field,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetInt64("user_id"),
	)

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "resource conflict"
	}

	c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// parses a positive numeric id from the request path, responding 404 when invalid
func ParsePathID(c *gin.Context, paramName string) (int64, bool) {
	raw := c.Param(paramName)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		NotFound(c, "")
		return 0, false
	}

	return id, true
}
