package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/tasklist/server/api/rest/auth"
	"codeberg.org/tasklist/server/api/rest/health"
	"codeberg.org/tasklist/server/api/rest/tasks"
	"codeberg.org/tasklist/server/internal/botdefense"
	"codeberg.org/tasklist/server/internal/logger"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(logger.RequestLogger())
	router.Use(CORSMiddleware(server.config.CORSOrigins))

	guardConfig := botdefense.DefaultConfig()
	guardConfig.Enabled = server.config.ProbeGuardEnabled
	router.Use(botdefense.New(guardConfig).Middleware())

	router.GET("/", health.Handler)
	router.GET("/ready", health.ReadyHandler(server.db))

	api := router.Group("/api")
	{
		api.GET("", health.InfoHandler)

		auth.RegisterRoutes(api, auth.Deps{
			Accounts:         server.services.Accounts,
			Verifier:         server.services.Tokens,
			States:           auth.NewStateStore(server.config.SessionSecret, server.config.IsProduction()),
			FrontendCallback: server.config.FrontendCallbackURL,
			RateLimit:        server.services.RateLimit,
		})

		tasks.RegisterRoutes(api, server.taskRepo, server.services.Tokens, server.services.Notifier)
	}
}
