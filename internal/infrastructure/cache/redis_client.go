// Package cache provides the Redis-backed proposal cache shared between
// planner instances
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/config"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("redis circuit breaker is open")

// RedisClient implements outbound.CacheRepository on Redis with circuit
// breaker protection. Failures never surface as misses so callers can tell
// an outage from a cold cache.
type RedisClient struct {
	client         redis.UniversalClient
	prefix         string
	logger         *zap.Logger
	circuitBreaker *CircuitBreaker
}

var _ outbound.CacheRepository = (*RedisClient)(nil)

// NewRedisClient creates a client; it does not dial until the first command.
func NewRedisClient(cfg config.RedisConfig, logger *zap.Logger) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	logger = logger.Named("redis-cache")
	logger.Info("Redis cache configured",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.Int("database", cfg.Database),
	)

	return &RedisClient{
		client:         client,
		prefix:         cfg.KeyPrefix,
		logger:         logger,
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

// Ping tests Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	if !r.circuitBreaker.AllowRequest() {
		return ErrCircuitOpen
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.circuitBreaker.RecordFailure()
		return fmt.Errorf("redis ping failed: %w", err)
	}
	r.circuitBreaker.RecordSuccess()
	return nil
}

// Get retrieves a value; absent keys return outbound.ErrCacheMiss
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.circuitBreaker.AllowRequest() {
		return nil, ErrCircuitOpen
	}

	result, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.circuitBreaker.RecordSuccess()
		return nil, outbound.ErrCacheMiss
	}
	if err != nil {
		r.circuitBreaker.RecordFailure()
		r.logger.Error("Redis GET failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("redis get: %w", err)
	}

	r.circuitBreaker.RecordSuccess()
	return result, nil
}

// Set stores a value in Redis with TTL
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !r.circuitBreaker.AllowRequest() {
		return ErrCircuitOpen
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.circuitBreaker.RecordFailure()
		r.logger.Error("Redis SET failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("redis set: %w", err)
	}
	r.circuitBreaker.RecordSuccess()
	return nil
}

// Delete removes a key
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	if !r.circuitBreaker.AllowRequest() {
		return ErrCircuitOpen
	}
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.circuitBreaker.RecordFailure()
		return fmt.Errorf("redis del: %w", err)
	}
	r.circuitBreaker.RecordSuccess()
	return nil
}

// HealthCheck pings Redis
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.Ping(ctx)
}

// Close closes the connection pool
func (r *RedisClient) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}

// CircuitState represents circuit breaker states
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	default:
		return "half-open"
	}
}

// CircuitBreaker opens after maxFailures consecutive failures and lets a
// single probe through once timeout has passed.
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	failures        int
	lastFailureTime time.Time
	state           CircuitState
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a closed breaker
func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{maxFailures: maxFailures, timeout: timeout, now: time.Now}
}

// AllowRequest reports whether a call may proceed
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.timeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess closes the breaker
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure; a failed half-open probe reopens at once
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = cb.now()

	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
