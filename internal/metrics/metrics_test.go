package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	r := NewRecorder()

	r.RecordRequest(true, 100*time.Millisecond)
	r.RecordRequest(true, 200*time.Millisecond)
	r.RecordRequest(false, 300*time.Millisecond)

	snap := r.Snapshot()
	assert.Equal(t, int64(3), snap.RequestsTotal)
	assert.Equal(t, int64(2), snap.RequestsSuccessful)
	assert.Equal(t, int64(1), snap.RequestsFailed)
	assert.Equal(t, float64(200), snap.AverageResponseTimeMS)
}

func TestEmptySnapshot(t *testing.T) {
	snap := NewRecorder().Snapshot()
	assert.Zero(t, snap.RequestsTotal)
	assert.Zero(t, snap.AverageResponseTimeMS)
	assert.Zero(t, snap.CacheHits)
	assert.Zero(t, snap.CacheMisses)
}

func TestCacheCounters(t *testing.T) {
	r := NewRecorder()
	r.RecordCacheHit()
	r.RecordCacheHit()
	r.RecordCacheMiss()

	snap := r.Snapshot()
	assert.Equal(t, int64(2), snap.CacheHits)
	assert.Equal(t, int64(1), snap.CacheMisses)
}

func TestConcurrentRecording(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.RecordRequest(i%2 == 0, time.Millisecond)
				r.RecordCacheHit()
				r.RecordCacheMiss()
			}
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	assert.Equal(t, int64(1000), snap.RequestsTotal)
	assert.Equal(t, int64(500), snap.RequestsSuccessful)
	assert.Equal(t, int64(500), snap.RequestsFailed)
	assert.Equal(t, int64(1000), snap.CacheHits)
	assert.Equal(t, int64(1000), snap.CacheMisses)
	assert.Equal(t, snap.RequestsTotal, snap.RequestsSuccessful+snap.RequestsFailed)
}

func TestUptime(t *testing.T) {
	r := NewRecorder()
	assert.GreaterOrEqual(t, r.Uptime(), time.Duration(0))
	assert.GreaterOrEqual(t, r.Snapshot().UptimeSeconds, int64(0))
}
