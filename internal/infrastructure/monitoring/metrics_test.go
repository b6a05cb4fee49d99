package monitoring

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCollector_PlannerMetrics(t *testing.T) {
	// Arrange
	m := NewMetricsCollector(zap.NewNop())

	// Act
	m.VariantsGenerated("Classic")
	m.VariantsGenerated("Classic")
	m.VariantsGenerated("Premium")
	m.GenerationFailed("incompatible_anchor")
	m.ProposalCache("hit")
	m.ProposalCache("miss")
	m.SessionsActive(7)
	m.MenuHealth(64)
	m.DatasetLoaded("demo")

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(m.variantsGenerated.WithLabelValues("Classic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.variantsGenerated.WithLabelValues("Premium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationFailures.WithLabelValues("incompatible_anchor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.proposalCache.WithLabelValues("hit")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.sessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.datasetReloads.WithLabelValues("demo")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.menuHealth))
}

func TestMetricsCollector_SeparateRegistries(t *testing.T) {
	// Two collectors in one process must not collide on registration
	assert.NotPanics(t, func() {
		NewMetricsCollector(zap.NewNop())
		NewMetricsCollector(zap.NewNop())
	})
}

func TestMetricsCollector_HTTPMiddleware(t *testing.T) {
	// Arrange
	m := NewMetricsCollector(zap.NewNop())
	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/api/v1/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	})

	// Act
	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+id, nil))
	}

	// Assert: both ids collapse onto the route pattern
	assert.Equal(t, 2.0, testutil.ToFloat64(
		m.httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/sessions/{id}", "404"),
	))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())
	m.VariantsGenerated("Budget")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `chefplanner_variants_generated_total{style="Budget"} 1`))
	assert.Contains(t, string(body), "go_goroutines")
}

func TestTracingProvider_Disabled(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
