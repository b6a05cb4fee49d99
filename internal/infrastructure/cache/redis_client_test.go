package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/config"
	"github.com/jenz26/Chef-Generator/internal/ports/outbound"
)

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	t.Run("ClosedUntilThreshold", func(t *testing.T) {
		cb.RecordFailure()
		assert.True(t, cb.AllowRequest())
		assert.Equal(t, CircuitClosed, cb.State())
	})

	t.Run("OpensAtThreshold", func(t *testing.T) {
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.AllowRequest())
	})

	t.Run("HalfOpenAfterTimeout", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		assert.True(t, cb.AllowRequest())
		assert.Equal(t, CircuitHalfOpen, cb.State())
	})

	t.Run("FailedProbeReopens", func(t *testing.T) {
		cb.RecordFailure()
		assert.Equal(t, CircuitOpen, cb.State())
		assert.False(t, cb.AllowRequest())
	})

	t.Run("SuccessCloses", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		require.True(t, cb.AllowRequest())
		cb.RecordSuccess()
		assert.Equal(t, CircuitClosed, cb.State())
		assert.Equal(t, "closed", cb.State().String())
	})
}

func TestRedisClient_Unreachable(t *testing.T) {
	// Arrange: nothing listens on port 1
	client := NewRedisClient(config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
		KeyPrefix:   "test:",
	}, zap.NewNop())
	defer client.Close()
	ctx := context.Background()

	// Act
	var errs []error
	for i := 0; i < 6; i++ {
		_, err := client.Get(ctx, "proposals:x")
		errs = append(errs, err)
	}

	// Assert: outages are errors, never misses, and trip the breaker
	for _, err := range errs[:5] {
		require.Error(t, err)
		assert.NotErrorIs(t, err, outbound.ErrCacheMiss)
	}
	assert.ErrorIs(t, errs[5], ErrCircuitOpen)
	assert.ErrorIs(t, client.Set(ctx, "k", []byte("v"), time.Minute), ErrCircuitOpen)
	assert.ErrorIs(t, client.HealthCheck(ctx), ErrCircuitOpen)
}
