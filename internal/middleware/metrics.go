package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	RelaysTotal        uint64
	RelaysFailed       uint64
	RelaysRejected     uint64
	TriggersTotal      uint64
	TriggersFailed     uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementRelays counts a relay call that reached the forwarding step.
func IncrementRelays() {
	atomic.AddUint64(&globalMetrics.RelaysTotal, 1)
}

// IncrementRelaysFailed counts a relay whose upstream could not be reached
// or did not answer with JSON.
func IncrementRelaysFailed() {
	atomic.AddUint64(&globalMetrics.RelaysFailed, 1)
}

// IncrementRelaysRejected counts a relay refused before forwarding.
func IncrementRelaysRejected() {
	atomic.AddUint64(&globalMetrics.RelaysRejected, 1)
}

func IncrementTriggers() {
	atomic.AddUint64(&globalMetrics.TriggersTotal, 1)
}

func IncrementTriggersFailed() {
	atomic.AddUint64(&globalMetrics.TriggersFailed, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"relays_total":         atomic.LoadUint64(&globalMetrics.RelaysTotal),
		"relays_failed":        atomic.LoadUint64(&globalMetrics.RelaysFailed),
		"relays_rejected":      atomic.LoadUint64(&globalMetrics.RelaysRejected),
		"triggers_total":       atomic.LoadUint64(&globalMetrics.TriggersTotal),
		"triggers_failed":      atomic.LoadUint64(&globalMetrics.TriggersFailed),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes": m.Alloc,
			"sys_bytes":   m.Sys,
			"num_gc":      m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode < 400 {
			atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
