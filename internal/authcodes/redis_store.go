package authcodes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyExchangeCode = "authcodes:exchange:%s"

// implements Store using Redis; codes expire through key TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context, userID int64) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}

	ok, err := s.client.SetNX(ctx, fmt.Sprintf(keyExchangeCode, code), userID, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store exchange code: %w", err)
	}

	if !ok {
		return "", errors.New("exchange code collision")
	}

	return code, nil
}

func (s *RedisStore) Redeem(ctx context.Context, code string) (int64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}

	// GETDEL makes redemption single-use even under concurrent requests
	raw, err := s.client.GetDel(ctx, fmt.Sprintf(keyExchangeCode, code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidCode
	}

	if err != nil {
		return 0, fmt.Errorf("failed to redeem exchange code: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt exchange code value: %w", err)
	}

	return userID, nil
}
