package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/internal/accounts"
	"codeberg.org/tasklist/server/internal/auth"
)

// what the auth routes need from the server
type Deps struct {
	Accounts         *accounts.Service
	Verifier         auth.Verifier
	States           *StateStore
	FrontendCallback string

	// applied to credential-accepting endpoints; nil disables limiting
	RateLimit gin.HandlerFunc
}

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, deps Deps) {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	router.POST("/register", limit, RegisterHandler(deps.Accounts))
	router.POST("/login", limit, LoginHandler(deps.Accounts))

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/google", BeginGoogleHandler(deps.Accounts, deps.States))
		authGroup.GET("/google/callback", GoogleCallbackHandler(deps.Accounts, deps.States, deps.FrontendCallback))
		authGroup.POST("/exchange", limit, ExchangeHandler(deps.Accounts))
		authGroup.POST("/google-verify", limit, GoogleVerifyHandler(deps.Accounts))
	}

	protected := router.Group("")
	protected.Use(auth.AuthMiddleware(deps.Verifier))
	{
		protected.GET("/verify-token", VerifyTokenHandler(deps.Accounts))
		protected.GET("/me", GetCurrentUserHandler(deps.Accounts))
	}
}
