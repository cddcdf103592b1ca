package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vyrodovalexey/avaroute/internal/observability"
)

// incrementWithExpiryScript atomically increments a counter and sets its
// expiry when the increment created it.
// KEYS[1] = key, ARGV[1] = delta, ARGV[2] = expiration in milliseconds
var incrementWithExpiryScript = redis.NewScript(`
	local current = redis.call('INCRBY', KEYS[1], ARGV[1])
	if current == tonumber(ARGV[1]) then
		redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	return current
`)

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger observability.Logger
}

// DefaultRedisConfig returns a RedisConfig with default values.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Address:      "localhost:6379",
		Prefix:       "ratelimit:",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisStore is a Store shared by all gateway replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger observability.Logger
	closed bool
	mu     sync.Mutex
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg *RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		cfg = DefaultRedisConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	logger.Info("connected to Redis",
		observability.String("address", cfg.Address),
		observability.Int("db", cfg.DB),
	)

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

func (s *RedisStore) prefixKey(key string) string {
	return s.prefix + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, s.prefixKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return 0, fmt.Errorf("redis get error: %w", err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse value: %w", err)
	}
	return n, nil
}

// IncrementWithExpiry implements Store using a Lua script for atomicity.
func (s *RedisStore) IncrementWithExpiry(
	ctx context.Context,
	key string,
	delta int64,
	expiration time.Duration,
) (int64, error) {
	expirationMs := expiration.Milliseconds()
	if expirationMs < 1 {
		expirationMs = 1
	}

	result, err := incrementWithExpiryScript.Run(
		ctx, s.client, []string{s.prefixKey(key)}, delta, expirationMs,
	).Result()
	if err != nil {
		return 0, fmt.Errorf("redis script error: %w", err)
	}

	val, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("redis script returned unexpected type: %T", result)
	}
	return val, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefixKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

// Close implements Store. It is safe to call more than once.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

// Ping checks that Redis answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
