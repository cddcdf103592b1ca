package ratelimit

import (
	"context"
	"fmt"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/observability"
	"github.com/vyrodovalexey/avaroute/internal/ratelimit/store"
)

// NewFromConfig builds the limiter described by cfg. A nil or disabled
// config yields a NoopLimiter. The fixed window algorithm uses a Redis
// store when cfg.Store is "redis", otherwise an in-memory store.
func NewFromConfig(
	ctx context.Context,
	cfg *config.RateLimitConfig,
	redisCfg *config.RedisConfig,
	logger observability.Logger,
) (Limiter, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if cfg == nil || !cfg.Enabled {
		return NoopLimiter{}, nil
	}

	window := cfg.Window.Duration()

	switch cfg.Algorithm {
	case config.AlgorithmTokenBucket:
		if cfg.Store == config.StoreRedis {
			logger.Warn("token bucket state is per instance; redis store ignored")
		}
		return NewTokenBucketLimiter(cfg.Requests, window, cfg.Burst,
			WithTokenBucketLogger(logger),
		), nil

	case config.AlgorithmFixedWindow:
		s, err := newStore(ctx, cfg.Store, redisCfg, logger)
		if err != nil {
			return nil, err
		}
		return NewFixedWindowLimiter(s, cfg.Requests, window, logger), nil

	default:
		return nil, fmt.Errorf("unknown rate limit algorithm %q", cfg.Algorithm)
	}
}

func newStore(
	ctx context.Context,
	kind string,
	redisCfg *config.RedisConfig,
	logger observability.Logger,
) (store.Store, error) {
	if kind != config.StoreRedis {
		return store.NewMemoryStore(), nil
	}
	if redisCfg == nil {
		return nil, fmt.Errorf("redis store requires redis configuration")
	}

	rc := store.DefaultRedisConfig()
	rc.Address = redisCfg.Address
	rc.Password = redisCfg.Password
	rc.DB = redisCfg.DB
	if redisCfg.KeyPrefix != "" {
		rc.Prefix = redisCfg.KeyPrefix
	}
	if t := redisCfg.Timeout.Duration(); t > 0 {
		rc.DialTimeout = t
		rc.ReadTimeout = t
		rc.WriteTimeout = t
	}
	rc.Logger = logger

	return store.NewRedisStore(ctx, rc)
}
