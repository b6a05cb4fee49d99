// Package healthcheck unit tests
package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func staticChecker(status Status, message string) Checker {
	return NewCustomChecker("static", func(context.Context) (Status, string, interface{}) {
		return status, message, nil
	})
}

func TestNew(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	assert.NotNil(t, hc)
	assert.Equal(t, "1.0.0", hc.version)
	assert.NotNil(t, hc.checkers)
	assert.Equal(t, 5*time.Second, hc.cacheTTL)
}

func TestHealthCheck_Check_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_Check_AggregatesStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"AllHealthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"OneDegraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"UnhealthyWins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			hc := New("1.0.0", zap.NewNop())
			for i, s := range tt.statuses {
				hc.Register(string(rune('a'+i)), staticChecker(s, ""))
			}

			// Act
			response := hc.Check(context.Background())

			// Assert
			assert.Equal(t, tt.expected, response.Status)
			require.Len(t, response.Checks, len(tt.statuses))
			assert.Equal(t, "a", response.Checks[0].Name)
		})
	}
}

func TestHealthCheck_Check_Caches(t *testing.T) {
	var calls atomic.Int32
	hc := New("1.0.0", zap.NewNop())
	hc.Register("counter", NewCustomChecker("counter", func(context.Context) (Status, string, interface{}) {
		calls.Add(1)
		return StatusHealthy, "", nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), calls.Load())

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestPingChecker(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("Success", func(t *testing.T) {
		check := NewPingChecker(func(context.Context) error { return nil }).Check(context.Background())
		assert.Equal(t, StatusHealthy, check.Status)
		assert.Empty(t, check.Message)
	})

	t.Run("RequiredFailure_ShouldBeUnhealthy", func(t *testing.T) {
		check := NewPingChecker(func(context.Context) error { return boom }).Check(context.Background())
		assert.Equal(t, StatusUnhealthy, check.Status)
		assert.Equal(t, "connection refused", check.Message)
	})

	t.Run("OptionalFailure_ShouldDegrade", func(t *testing.T) {
		check := NewOptionalPingChecker(func(context.Context) error { return boom }).Check(context.Background())
		assert.Equal(t, StatusDegraded, check.Status)
	})
}

func TestHealthCheck_Handler(t *testing.T) {
	tests := []struct {
		name         string
		status       Status
		expectedCode int
	}{
		{"Healthy", StatusHealthy, http.StatusOK},
		{"Degraded", StatusDegraded, http.StatusOK},
		{"Unhealthy", StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			hc := New("2.0.0", zap.NewNop())
			hc.Register("dataset", staticChecker(tt.status, "msg"))
			rec := httptest.NewRecorder()

			// Act
			hc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			// Assert
			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, string(tt.status), body["status"])
			assert.Equal(t, "2.0.0", body["version"])
			assert.Contains(t, body, "total_duration_ms")
		})
	}
}

func TestHealthCheck_LivenessHandler(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("broken", staticChecker(StatusUnhealthy, "down"))
	rec := httptest.NewRecorder()

	hc.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alive"`)
}
