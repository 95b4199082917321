package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveInvocation(t *testing.T) {
	m := NewMetrics()

	m.ObserveInvocation("atr", 100, 2*time.Millisecond)
	m.ObserveInvocation("atr", 50, time.Millisecond)
	m.RecordError("supertrend", "CONFIG")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("atr")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.rowsProcessed.WithLabelValues("atr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("supertrend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("supertrend", "CONFIG")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveInvocation("clean_entries", 5, time.Microsecond)

	rec := httptest.NewRecorder()
	NewMetricsHandler(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `indicator_engine_invocations_total{function="clean_entries"} 1`)
}
