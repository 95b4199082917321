package monitoring

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_Status(t *testing.T) {
	h := NewHealthChecker()
	assert.Equal(t, "starting", h.Status().Status)

	h.RecordError(fmt.Errorf("load failed"))
	assert.Equal(t, "unhealthy", h.Status().Status)

	h.RecordRun(120)
	s := h.Status()
	assert.Equal(t, "degraded", s.Status)
	assert.Equal(t, 1, s.Runs)
	assert.Equal(t, 120, s.LastRows)

	fresh := NewHealthChecker()
	fresh.RecordRun(5)
	fresh.RecordError(nil)
	assert.Equal(t, "healthy", fresh.Status().Status)
}

func TestHealthChecker_KeepsRecentErrors(t *testing.T) {
	h := NewHealthChecker()
	for i := 0; i < maxErrors+3; i++ {
		h.RecordError(fmt.Errorf("error %d", i))
	}
	errs := h.Status().Errors
	require.Len(t, errs, maxErrors)
	assert.Equal(t, "error 3", errs[0])
	assert.Equal(t, fmt.Sprintf("error %d", maxErrors+2), errs[maxErrors-1])
}

func TestHealthChecker_ServeHTTP(t *testing.T) {
	h := NewHealthChecker()
	h.RecordError(fmt.Errorf("boom"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, []string{"boom"}, status.Errors)

	h.RecordRun(3)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
