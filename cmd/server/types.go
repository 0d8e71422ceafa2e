package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/tasklist/server/internal/accounts"
	"codeberg.org/tasklist/server/internal/auth"
	"codeberg.org/tasklist/server/internal/config"
	"codeberg.org/tasklist/server/internal/notifications"
	"codeberg.org/tasklist/server/internal/storage"
	"codeberg.org/tasklist/server/tasklist/tasks"
	"codeberg.org/tasklist/server/tasklist/users"
)

// holds all dependencies and state for the API server
type Server struct {
	db       *storage.Client
	redis    *redis.Client
	config   *config.Config
	userRepo users.Store
	taskRepo tasks.Store
	services *Services
	router   *gin.Engine

	// stops the background JWKS refresher
	cancel context.CancelFunc
}

// holds the identity and notification services built on top of the stores
type Services struct {
	Accounts  *accounts.Service
	Tokens    *auth.TokenIssuer
	Notifier  *notifications.Dispatcher
	RateLimit gin.HandlerFunc

	// non-nil when events are published to kafka
	kafka *notifications.KafkaNotifier
}
