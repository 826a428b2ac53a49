package checker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandlbn/crate-checker/internal/cache"
	"github.com/sandlbn/crate-checker/internal/metrics"
)

func newTestService(reg *fakeRegistry, cacheEnabled bool) *Service {
	responseCache := cache.New(cacheEnabled, time.Minute, 100)
	return NewService(reg, responseCache, metrics.NewRecorder(), nil)
}

func TestAggregate(t *testing.T) {
	tr := true
	results := []CheckResult{
		{CrateName: "serde", Exists: true},
		{CrateName: "gone", Exists: false},
		{CrateName: "broken", Error: "network error"},
		{CrateName: "tokio", Exists: true, VersionExists: &tr},
	}

	summary := Aggregate(results, 1500*time.Millisecond)
	assert.Equal(t, 4, summary.TotalProcessed)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, int64(1500), summary.ProcessingTimeMS)
	assert.Equal(t, summary.TotalProcessed, summary.Successful+summary.Failed)
}

func TestAggregate_Empty(t *testing.T) {
	summary := Aggregate(nil, 0)
	assert.Equal(t, 0, summary.TotalProcessed)
	assert.Equal(t, 0, summary.Successful)
	assert.Equal(t, 0, summary.Failed)
}

func TestExecute_SequentialOrder(t *testing.T) {
	svc := newTestService(newFakeRegistry(), false)
	queries := []Query{{Name: "tokio"}, {Name: "missing"}, {Name: "serde"}}

	results := svc.Execute(context.Background(), queries, Options{})
	require.Len(t, results, 3)
	assert.Equal(t, "tokio", results[0].CrateName)
	assert.Equal(t, "missing", results[1].CrateName)
	assert.Equal(t, "serde", results[2].CrateName)
}

func TestExecute_ParallelPreservesOrder(t *testing.T) {
	reg := newFakeRegistry()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		reg.crates[name] = fakeCrate{newest: "0.1.0", versions: []string{"0.1.0"}}
	}
	svc := newTestService(reg, false)

	queries := make([]Query, 0, 6)
	for _, name := range []string{"e", "a", "missing", "c", "b", "d"} {
		queries = append(queries, Query{Name: name})
	}

	results := svc.Execute(context.Background(), queries, Options{Parallel: true, MaxConcurrent: 3})
	require.Len(t, results, len(queries))
	for i, q := range queries {
		assert.Equal(t, q.Name, results[i].CrateName, "result %d out of order", i)
	}
	assert.False(t, results[2].Exists)
}

func TestResolveBatch(t *testing.T) {
	svc := newTestService(newFakeRegistry(), false)
	input := &BatchInput{Kind: InputNameList, Names: []string{"serde", "missing", "tokio"}}

	summary, err := svc.ResolveBatch(context.Background(), input, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalProcessed)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "serde", summary.Results[0].CrateName)
}

func TestResolveBatch_ValidationFailsBeforeUpstream(t *testing.T) {
	reg := newFakeRegistry()
	svc := newTestService(reg, false)

	_, err := svc.ResolveBatch(context.Background(), &BatchInput{Kind: InputVersionMap}, Options{})
	require.Error(t, err)
	assert.Zero(t, reg.existsCalls.Load())
}

func TestResolveOne_CachesSuccessfulResults(t *testing.T) {
	reg := newFakeRegistry()
	svc := newTestService(reg, true)

	first := svc.ResolveOne(context.Background(), "serde", "1.0.0")
	assert.True(t, first.Exists)
	calls := reg.existsCalls.Load()

	second := svc.ResolveOne(context.Background(), "serde", "1.0.0")
	assert.Equal(t, first, second)
	assert.Equal(t, calls, reg.existsCalls.Load(), "cache hit must not reach upstream")
}

func TestResolveOne_DoesNotCacheFailures(t *testing.T) {
	reg := newFakeRegistry()
	reg.existsErr = context.DeadlineExceeded
	svc := newTestService(reg, true)

	svc.ResolveOne(context.Background(), "serde", "")
	svc.ResolveOne(context.Background(), "serde", "")
	assert.Equal(t, int64(2), reg.existsCalls.Load(), "failed checks must stay uncached")
}

func TestResolveOne_MissingCrateIsCached(t *testing.T) {
	reg := newFakeRegistry()
	svc := newTestService(reg, true)

	first := svc.ResolveOne(context.Background(), "missing", "")
	assert.False(t, first.Exists)
	assert.Empty(t, first.Error)
	calls := reg.existsCalls.Load()

	svc.ResolveOne(context.Background(), "missing", "")
	assert.Equal(t, calls, reg.existsCalls.Load(), "a clean not-found result is cacheable")
}

func TestResolveOne_DisabledCacheAlwaysFetches(t *testing.T) {
	reg := newFakeRegistry()
	svc := newTestService(reg, false)

	svc.ResolveOne(context.Background(), "serde", "")
	svc.ResolveOne(context.Background(), "serde", "")
	assert.Equal(t, int64(2), reg.existsCalls.Load())
}
