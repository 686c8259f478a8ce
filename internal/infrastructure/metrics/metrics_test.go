package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CountersAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.EnrichmentFallbacks.WithLabelValues("customer_name").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.EnrichmentFallbacks.WithLabelValues("customer_name")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EnrichmentFallbacks.WithLabelValues("customer_name")))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.StatusCommits.WithLabelValues("shipped", OutcomeSuccess).Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `vendordesk_status_commits_total{outcome="success",status="shipped"} 1`)
}
