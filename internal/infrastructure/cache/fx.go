package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/HoceineEl/madrasa-messaging/config"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
)

// Module provides cache components for fx DI
var Module = fx.Module("cache",
	fx.Provide(NewRedisClientFx),
	fx.Provide(NewTokenCacheFx),
)

// NewRedisClientFx creates the Redis client with fx lifecycle management
func NewRedisClientFx(lc fx.Lifecycle, cfg *config.RedisConfig, logger zerolog.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Error().Err(err).Str("addr", cfg.Addr).Msg("redis ping failed")
				return err
			}
			logger.Info().Str("addr", cfg.Addr).Msg("redis connected")
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})

	return rdb
}

// NewTokenCacheFx creates the token cache for fx DI
func NewTokenCacheFx(rdb *redis.Client, logger zerolog.Logger) deps.TokenCache {
	return NewRedisTokenCache(rdb, logger)
}
