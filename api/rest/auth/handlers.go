package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/api/rest/respond"
	"codeberg.org/tasklist/server/internal/accounts"
	"codeberg.org/tasklist/server/internal/auth"
	"codeberg.org/tasklist/server/internal/errors"
	"codeberg.org/tasklist/server/internal/logger"
)

// RegisterHandler godoc
// @Summary Register with email and password
// @Description Create a password account and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Credentials"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/register [post]
func RegisterHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		session, err := svc.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusCreated, AuthResponse{
			Message:     "user created successfully",
			AccessToken: session.Token,
			User:        session.User,
		})
	}
}

// LoginHandler godoc
// @Summary Log in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/login [post]
func LoginHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		session, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Message:     "login successful",
			AccessToken: session.Token,
			User:        session.User,
		})
	}
}

// BeginGoogleHandler godoc
// @Summary Start Google sign in
// @Description Returns the provider consent URL and sets a short-lived state cookie
// @Tags auth
// @Produce json
// @Success 200 {object} AuthorizationURLResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/auth/google [get]
func BeginGoogleHandler(svc *accounts.Service, states *StateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authURL, state, err := svc.BeginOAuth(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to initiate google login", err)
			return
		}

		if err := states.Save(c, state); err != nil {
			errors.InternalError(c, "failed to initiate google login", err)
			return
		}

		c.JSON(http.StatusOK, AuthorizationURLResponse{AuthorizationURL: authURL})
	}
}

// GoogleCallbackHandler godoc
// @Summary Google OAuth callback
// @Description Completes the code flow and redirects to the frontend with a one-time exchange code
// @Tags auth
// @Param code query string false "Authorization code"
// @Param state query string false "State echoed by the provider"
// @Param error query string false "Provider error"
// @Success 302 {string} string "Redirect to frontend callback"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/auth/google/callback [get]
func GoogleCallbackHandler(svc *accounts.Service, states *StateStore, frontendCallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		expectedState := states.Pop(c)

		if providerErr := c.Query("error"); providerErr != "" {
			logger.FromContext(c.Request.Context()).Warn("provider returned an error", "error", providerErr)
			errors.BadRequestCode(c, errors.CodeProviderError, "google authorization was not granted")
			return
		}

		code := c.Query("code")
		if code == "" {
			errors.ValidationError(c, "code", "authorization code not provided")
			return
		}

		if err := accounts.CheckState(expectedState, c.Query("state")); err != nil {
			respond.Error(c, err)
			return
		}

		exchangeCode, err := svc.CompleteOAuth(c.Request.Context(), code)
		if err != nil {
			respond.Error(c, err)
			return
		}

		target, err := withQuery(frontendCallback, "code", exchangeCode)
		if err != nil {
			errors.InternalError(c, "invalid frontend callback url", err)
			return
		}

		c.Redirect(http.StatusFound, target)
	}
}

// ExchangeHandler godoc
// @Summary Redeem a one-time exchange code
// @Description Trades the code from the OAuth redirect for a bearer token. Codes are single use
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ExchangeRequest true "Exchange code"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/auth/exchange [post]
func ExchangeHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ExchangeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		session, err := svc.RedeemExchangeCode(c.Request.Context(), req.Code)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Message:     "google login successful",
			AccessToken: session.Token,
			User:        session.User,
		})
	}
}

// GoogleVerifyHandler godoc
// @Summary Sign in with a Google ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleVerifyRequest true "ID token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/auth/google-verify [post]
func GoogleVerifyHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.BadRequest(c, "invalid request body", err)
			return
		}

		session, err := svc.VerifyIdentityToken(c.Request.Context(), req.Credential)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, AuthResponse{
			Message:     "google login successful",
			AccessToken: session.Token,
			User:        session.User,
		})
	}
}

// VerifyTokenHandler godoc
// @Summary Introspect the bearer token
// @Tags auth
// @Produce json
// @Success 200 {object} VerifyTokenResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /api/verify-token [get]
// @Security BearerAuth
func VerifyTokenHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := svc.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, VerifyTokenResponse{Valid: true, User: user})
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(svc *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := svc.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

func withQuery(rawURL, key, value string) (string, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	q := target.Query()
	q.Set(key, value)
	target.RawQuery = q.Encode()

	return target.String(), nil
}
