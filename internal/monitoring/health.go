package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks the outcome of the most recent indicator runs
type HealthChecker struct {
	mu       sync.RWMutex
	started  time.Time
	lastRun  time.Time
	lastRows int
	runs     int
	errors   []string
}

type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastRows  int       `json:"last_rows"`
	Runs      int       `json:"runs"`
	Uptime    string    `json:"uptime"`
	Errors    []string  `json:"errors,omitempty"`
}

// maxErrors bounds the retained error messages
const maxErrors = 10

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		started: time.Now(),
		errors:  make([]string, 0),
	}
}

// RecordRun notes a completed run over rows input rows
func (h *HealthChecker) RecordRun(rows int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = time.Now()
	h.lastRows = rows
	h.runs++
}

// RecordError keeps the most recent failure messages
func (h *HealthChecker) RecordError(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err.Error())
	if len(h.errors) > maxErrors {
		h.errors = h.errors[len(h.errors)-maxErrors:]
	}
}

// Status returns the current health snapshot
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	switch {
	case len(h.errors) > 0 && h.runs == 0:
		status = "unhealthy"
	case len(h.errors) > 0:
		status = "degraded"
	case h.runs == 0:
		status = "starting"
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastRun:   h.lastRun,
		LastRows:  h.lastRows,
		Runs:      h.runs,
		Uptime:    time.Since(h.started).String(),
		Errors:    append([]string(nil), h.errors...),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
