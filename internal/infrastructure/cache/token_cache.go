package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
)

// RedisTokenCache stores provider auth tokens in Redis with a bounded
// lifetime. Redis owns expiry, so a crashed process never leaks a token
// past its TTL.
type RedisTokenCache struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewRedisTokenCache creates a Redis-backed token cache
func NewRedisTokenCache(rdb *redis.Client, logger zerolog.Logger) deps.TokenCache {
	return &RedisTokenCache{
		rdb:    rdb,
		logger: logger.With().Str("component", "token_cache").Logger(),
	}
}

func tokenKey(sessionID uint) string {
	return fmt.Sprintf("provider:token:%d", sessionID)
}

// Set stores the token under the session id with the given TTL
func (c *RedisTokenCache) Set(ctx context.Context, sessionID uint, token string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, tokenKey(sessionID), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}

	c.logger.Debug().Uint("session_id", sessionID).Dur("ttl", ttl).Msg("token cached")
	return nil
}

// Get returns the cached token for the session, if present and unexpired
func (c *RedisTokenCache) Get(ctx context.Context, sessionID uint) (string, bool, error) {
	token, err := c.rdb.Get(ctx, tokenKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached token: %w", err)
	}
	return token, true, nil
}

// Invalidate removes the cached token for the session
func (c *RedisTokenCache) Invalidate(ctx context.Context, sessionID uint) error {
	if err := c.rdb.Del(ctx, tokenKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	c.logger.Debug().Uint("session_id", sessionID).Msg("token invalidated")
	return nil
}
