package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsManager_ObserveRequest(t *testing.T) {
	m := NewMetricsManager("marketplace")

	m.ObserveRequest("POST /api/v1/listings", "", 20*time.Millisecond)
	m.ObserveRequest("POST /api/v1/listings", "validation_failed", 5*time.Millisecond)
	m.ObserveRequest("DELETE /api/v1/listings/{id}", "forbidden", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues("POST /api/v1/listings", "validation_failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues("DELETE /api/v1/listings/{id}", "forbidden")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.APIRequestLatency))
}

func TestMetricsServer_ExposesRegistry(t *testing.T) {
	m := NewMetricsManager("marketplace")
	m.ListingsCreatedTotal.Inc()

	srv := NewMetricsServer("0", m.Registry)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "marketplace_listings_created_total 1")
}
