package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/tasklist/server/internal/config"
	"codeberg.org/tasklist/server/internal/logger"
	"codeberg.org/tasklist/server/internal/storage"
	"codeberg.org/tasklist/server/tasklist/tasks"
	"codeberg.org/tasklist/server/tasklist/users"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := newRouter(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	db, err := storage.NewClient(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		cancel()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			cancel()
			return nil, err
		}
	} else {
		logger.Warn("REDIS_URL not set, exchange codes and rate limits are kept in memory")
	}

	userRepo := users.NewRepository(db.Pool(), cfg.DBTimeout)
	taskRepo := tasks.NewRepository(db.Pool(), cfg.DBTimeout)

	services, err := InitializeServices(ctx, cfg, userRepo, redisClient)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		}
		db.Close()
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}


	server := &Server{
		db:       db,
		redis:    redisClient,
		config:   cfg,
		userRepo: userRepo,
		taskRepo: taskRepo,
		services: services,
		router:   router,
		cancel:   cancel,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// builds the engine. X-Forwarded-For is only honored from configured proxies,
// otherwise ClientIP is the socket address
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	router.Use(gin.Recovery())

	return router, nil
}

// releases every connection; called after the http server has drained
func (s *Server) Close() {
	s.services.Notifier.Wait()

	if s.services.kafka != nil {
		if err := s.services.kafka.Close(); err != nil {
			logger.ErrorErr(err, "failed to close kafka writer")
		}
	}

	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	s.db.Close()
	s.cancel()
}
