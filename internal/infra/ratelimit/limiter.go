// Package ratelimit builds the request limiter shared by the HTTP middleware.
package ratelimit

import (
	"log/slog"

	"restapi/config"
	"restapi/internal/domain/constants"
	"restapi/internal/errors"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/fx"
)

const storePrefix = "restapi:ratelimit"

type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Redis  *redis.Client `optional:"true"`
}

// New returns nil when rate limiting is disabled.
func New(params Params) (*limiter.Limiter, error) {
	cfg := params.Config.RateLimit
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid rate limit %q", cfg.Rate)
	}

	store, err := newStore(cfg.Store, params.Redis)
	if err != nil {
		return nil, err
	}

	params.Logger.Info("Rate limiting enabled",
		slog.String("rate", cfg.Rate),
		slog.String("store", cfg.Store),
	)

	return limiter.New(store, rate), nil
}

func newStore(kind string, client *redis.Client) (limiter.Store, error) {
	switch kind {
	case "", constants.RateLimitStoreMemory:
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          storePrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	case constants.RateLimitStoreRedis:
		if client == nil {
			return nil, errors.New("redis store requested but redis is not configured")
		}
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: storePrefix})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create redis rate limit store")
		}

		return store, nil
	default:
		return nil, errors.Errorf("unknown rate limit store: %s", kind)
	}
}
