package monitor

import (
	"sync"
	"time"
)

// GCMonitor tracks health of the periodic BadgerDB value-log GC job,
// adapted from tinyobs's compaction health monitor to the simpler
// single-job shape this façade needs (no downsampling job to track).
type GCMonitor struct {
	mu                sync.RWMutex
	lastSuccess       time.Time
	lastAttempt       time.Time
	consecutiveErrors int
	lastError         string
}

// RecordSuccess records a successful GC cycle.
func (gm *GCMonitor) RecordSuccess() {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.lastSuccess = time.Now()
	gm.lastAttempt = time.Now()
	gm.consecutiveErrors = 0
	gm.lastError = ""
}

// RecordFailure records a failed GC cycle.
func (gm *GCMonitor) RecordFailure(err error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.lastAttempt = time.Now()
	gm.consecutiveErrors++
	if err != nil {
		gm.lastError = err.Error()
	}
}

// IsHealthy reports whether GC is running normally: it has succeeded at
// least once, within the last hour, with at most 3 consecutive failures.
func (gm *GCMonitor) IsHealthy() bool {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	if gm.lastSuccess.IsZero() {
		return false
	}
	if time.Since(gm.lastSuccess) > 1*time.Hour {
		return false
	}
	return gm.consecutiveErrors <= 3
}

// GCStatus is the JSON-friendly snapshot exposed by the health endpoint.
type GCStatus struct {
	Healthy           bool   `json:"healthy"`
	LastSuccess       string `json:"last_success,omitempty"`
	TimeSinceSuccess  string `json:"time_since_success,omitempty"`
	LastAttempt       string `json:"last_attempt,omitempty"`
	ConsecutiveErrors int    `json:"consecutive_errors,omitempty"`
	LastError         string `json:"last_error,omitempty"`
}

// Status returns the current GC status for health checks.
func (gm *GCMonitor) Status() GCStatus {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	status := GCStatus{Healthy: gm.IsHealthy()}
	if !gm.lastSuccess.IsZero() {
		status.LastSuccess = gm.lastSuccess.Format(time.RFC3339)
		status.TimeSinceSuccess = time.Since(gm.lastSuccess).String()
	}
	if !gm.lastAttempt.IsZero() {
		status.LastAttempt = gm.lastAttempt.Format(time.RFC3339)
	}
	if gm.consecutiveErrors > 0 {
		status.ConsecutiveErrors = gm.consecutiveErrors
		status.LastError = gm.lastError
	}
	return status
}
