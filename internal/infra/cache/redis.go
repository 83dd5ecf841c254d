// Package cache provides the shared Redis client.
package cache

import (
	"context"
	"log/slog"

	"restapi/config"
	"restapi/internal/domain/lifecycle"
	"restapi/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewRedis returns nil when no address is configured. Consumers fall back to
// in-process stores in that case.
func NewRedis(params Params) *redis.Client {
	cfg := params.Config.Redis
	if !cfg.Enabled() {
		params.Logger.Info("Redis disabled, using in-memory stores")

		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client
}
