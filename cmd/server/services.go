package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"codeberg.org/tasklist/server/internal/accounts"
	"codeberg.org/tasklist/server/internal/auth"
	"codeberg.org/tasklist/server/internal/authcodes"
	"codeberg.org/tasklist/server/internal/config"
	"codeberg.org/tasklist/server/internal/identity"
	"codeberg.org/tasklist/server/internal/idp"
	"codeberg.org/tasklist/server/internal/logger"
	"codeberg.org/tasklist/server/internal/notifications"
	"codeberg.org/tasklist/server/internal/ratelimit"
	"codeberg.org/tasklist/server/tasklist/users"
)

// creates the identity services; redisClient may be nil
func InitializeServices(ctx context.Context, cfg *config.Config, userStore users.Store, redisClient *redis.Client) (*Services, error) {
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}

	provider, err := idp.NewClient(ctx, idp.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL(),
		Timeout:      cfg.ProviderTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create identity provider client: %w", err)
	}

	var codes authcodes.Store
	if redisClient != nil {
		codes = authcodes.NewRedisStore(redisClient, cfg.ExchangeCodeTTL)
	} else {
		codes = authcodes.NewMemoryStore(cfg.ExchangeCodeTTL)
	}

	var (
		notifier notifications.Notifier = notifications.LogNotifier{}
		kafka    *notifications.KafkaNotifier
	)

	if len(cfg.KafkaBrokers) > 0 {
		kafka = notifications.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		notifier = kafka
		logger.Info("publishing notifications to kafka", "topic", cfg.KafkaTopic, "brokers", len(cfg.KafkaBrokers))
	}

	dispatcher := notifications.NewDispatcher(notifier, 0)

	limit, err := ratelimit.Middleware(cfg.AuthRateLimit, redisClient)
	if err != nil {
		return nil, err
	}

	svc, err := accounts.NewService(accounts.Deps{
		Users:             userStore,
		Resolver:          identity.NewResolver(userStore),
		Hasher:            auth.NewHasher(cfg.BcryptCost),
		Tokens:            tokens,
		Provider:          provider,
		Codes:             codes,
		Notifier:          dispatcher,
		MinPasswordLength: cfg.MinPasswordLength,
	})
	if err != nil {
		return nil, err
	}

	return &Services{
		Accounts:  svc,
		Tokens:    tokens,
		Notifier:  dispatcher,
		RateLimit: limit,
		kafka:     kafka,
	}, nil
}
