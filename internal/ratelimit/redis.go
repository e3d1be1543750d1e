package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds connection and window parameters for the Redis limiter.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	Limit       int
	Window      time.Duration
	KeyPrefix   string
	DialTimeout time.Duration
}

// Counts the request and arms the window expiry on the first hit of a window.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter implements Limiter with an atomic INCR/PEXPIRE window per key.
type RedisLimiter struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedisLimiter connects to Redis and pings it so misconfiguration fails at startup.
func NewRedisLimiter(cfg RedisConfig) (*RedisLimiter, error) {
	if cfg.Addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", cfg.Limit)
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		MaxRetries:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping rate limit redis: %w", err)
	}

	return &RedisLimiter{client: client, cfg: cfg}, nil
}

// Allow counts one request for key and reports whether it fits the window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	reply, err := fixedWindowScript.Run(ctx, l.client, []string{l.cfg.KeyPrefix + key}, l.cfg.Window.Milliseconds()).Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit check: %w", err)
	}
	if len(reply) != 2 {
		return Result{}, fmt.Errorf("rate limit check: unexpected reply %v", reply)
	}
	count, okCount := reply[0].(int64)
	ttl, okTTL := reply[1].(int64)
	if !okCount || !okTTL {
		return Result{}, fmt.Errorf("rate limit check: unexpected reply %v", reply)
	}
	return evaluate(int(count), l.cfg.Limit, time.Duration(ttl)*time.Millisecond), nil
}

// Close releases the Redis connection pool.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

func evaluate(count, limit int, resetIn time.Duration) Result {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}
