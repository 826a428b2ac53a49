// Package metrics tracks operational counters for crate-checker. All
// counters are individually atomic; a snapshot is consistent per counter
// but not across counters, which is sufficient for reporting.
package metrics

import (
	"sync/atomic"
	"time"
)

// Recorder holds monotonically increasing operation counters.
type Recorder struct {
	requestsTotal       int64
	requestsSuccessful  int64
	requestsFailed      int64
	cacheHits           int64
	cacheMisses         int64
	totalResponseTimeMS int64

	startTime time.Time
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	RequestsTotal         int64   `json:"requests_total"`
	RequestsSuccessful    int64   `json:"requests_successful"`
	RequestsFailed        int64   `json:"requests_failed"`
	AverageResponseTimeMS float64 `json:"average_response_time_ms"`
	CacheHits             int64   `json:"cache_hits"`
	CacheMisses           int64   `json:"cache_misses"`
	UptimeSeconds         int64   `json:"uptime_seconds"`
}

// NewRecorder creates a metrics recorder anchored at the current time.
func NewRecorder() *Recorder {
	return &Recorder{startTime: time.Now()}
}

// RecordRequest counts one externally-facing operation and its duration.
func (r *Recorder) RecordRequest(success bool, elapsed time.Duration) {
	atomic.AddInt64(&r.requestsTotal, 1)
	atomic.AddInt64(&r.totalResponseTimeMS, elapsed.Milliseconds())
	if success {
		atomic.AddInt64(&r.requestsSuccessful, 1)
	} else {
		atomic.AddInt64(&r.requestsFailed, 1)
	}
}

// RecordCacheHit counts one response served from cache.
func (r *Recorder) RecordCacheHit() {
	atomic.AddInt64(&r.cacheHits, 1)
}

// RecordCacheMiss counts one response that required an upstream call.
func (r *Recorder) RecordCacheMiss() {
	atomic.AddInt64(&r.cacheMisses, 1)
}

// Snapshot returns the current counter values plus process uptime and the
// running average response time.
func (r *Recorder) Snapshot() Snapshot {
	total := atomic.LoadInt64(&r.requestsTotal)
	totalTime := atomic.LoadInt64(&r.totalResponseTimeMS)

	var avg float64
	if total > 0 {
		avg = float64(totalTime) / float64(total)
	}

	return Snapshot{
		RequestsTotal:         total,
		RequestsSuccessful:    atomic.LoadInt64(&r.requestsSuccessful),
		RequestsFailed:        atomic.LoadInt64(&r.requestsFailed),
		AverageResponseTimeMS: avg,
		CacheHits:             atomic.LoadInt64(&r.cacheHits),
		CacheMisses:           atomic.LoadInt64(&r.cacheMisses),
		UptimeSeconds:         int64(time.Since(r.startTime).Seconds()),
	}
}

// Uptime returns how long this recorder (and so the process) has been up.
func (r *Recorder) Uptime() time.Duration {
	return time.Since(r.startTime)
}
