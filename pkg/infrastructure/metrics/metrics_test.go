package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordCatalogLoad(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordCatalogLoad(12, nil)
	m.RecordCatalogLoad(0, errors.New("HTTP 404"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.catalogLoads.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.catalogLoads.WithLabelValues("error")), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(m.catalogItems), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.catalogReady), 0)
}

func TestMetrics_RecordDerivation(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordDerivation(false)
	m.RecordDerivation(true)
	m.RecordDerivation(true)

	assert.InDelta(t, 1, testutil.ToFloat64(m.derivations.WithLabelValues("miss")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.derivations.WithLabelValues("hit")), 0)
}

func TestMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCatalogLoad(1, nil)
		m.RecordDerivation(true)
		m.RecordHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordHTTPRequest(http.MethodGet, "/api/pricelist", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `pricelist_http_requests_total{method="GET",route="/api/pricelist",status="200"} 1`), body)
	assert.Contains(t, body, "pricelist_http_request_duration_seconds_bucket")
}
