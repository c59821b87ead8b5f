// Package ratelimit provides a Redis-backed token-bucket rate limiter.
// The limiter is an external collaborator: a Redis outage must not take the
// API down, so every failure path answers "allowed".
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces limiter state in Redis.
const keyPrefix = "ratelimit:client:"

// stateTTL bounds how long idle bucket state survives in Redis.
const stateTTL = 120 * time.Second

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Limiter throttles requests per client key using a token bucket in Redis.
type Limiter struct {
	client    *redis.Client
	logger    *slog.Logger
	perMinute int
	burst     int
}

// New connects to Redis and returns a Limiter enforcing perMinute sustained
// requests with the given burst capacity per client key.
func New(ctx context.Context, redisURL string, perMinute, burst int, logger *slog.Logger) (*Limiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Limiter{
		client:    client,
		logger:    logger.With(slog.String("component", "ratelimit")),
		perMinute: perMinute,
		burst:     burst,
	}, nil
}

// Allow checks and updates the rate limit for the given client key.
// Redis errors are logged and the request is allowed (fail open).
func (l *Limiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if l.perMinute == 0 {
		return l.open(), nil
	}

	ratePerSecond := float64(l.perMinute) / 60.0
	now := time.Now().Unix()

	result, err := tokenBucketScript.Run(ctx, l.client,
		[]string{keyPrefix + clientKey},
		ratePerSecond, l.burst, now, int(stateTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		l.logger.Error("rate limit check failed, allowing request",
			slog.String("error", err.Error()))
		return l.open(), nil
	}

	allowed := result[0] == 1
	retryAfterSec := result[1]
	remaining := result[2]

	return &Result{
		Allowed:    allowed,
		Remaining:  remaining,
		ResetAt:    time.Now().Add(time.Duration(float64(time.Second) / ratePerSecond)),
		RetryAfter: time.Duration(retryAfterSec) * time.Second,
	}, nil
}

// Limit returns the configured sustained rate, for response headers.
func (l *Limiter) Limit() int {
	return l.perMinute
}

// Ping checks Redis connectivity.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (l *Limiter) Close() error {
	return l.client.Close()
}

// open is the fail-open result.
func (l *Limiter) open() *Result {
	return &Result{
		Allowed:   true,
		Remaining: int64(l.burst),
		ResetAt:   time.Now().Add(time.Minute),
	}
}
