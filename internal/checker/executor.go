package checker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sandlbn/crate-checker/internal/cache"
	"github.com/sandlbn/crate-checker/internal/crates"
	"github.com/sandlbn/crate-checker/internal/logging"
	"github.com/sandlbn/crate-checker/internal/metrics"
)

// Options control batch execution.
type Options struct {
	// Parallel dispatches checks concurrently instead of one at a time.
	Parallel bool
	// MaxConcurrent bounds in-flight checks in parallel mode.
	MaxConcurrent int
}

// DefaultMaxConcurrent bounds parallel execution when the caller does not
// set a limit.
const DefaultMaxConcurrent = 10

// BatchResult summarizes one batch run. TotalProcessed always equals
// len(Results), and Successful+Failed always equals TotalProcessed.
type BatchResult struct {
	Results          []CheckResult `json:"results"`
	TotalProcessed   int           `json:"total_processed"`
	Successful       int           `json:"successful"`
	Failed           int           `json:"failed"`
	ProcessingTimeMS int64         `json:"processing_time_ms"`
}

// Aggregate folds per-item outcomes into a batch summary. Pure: a batch
// with zero successes is still a valid summary; escalation policy belongs
// to the caller layer.
func Aggregate(results []CheckResult, elapsed time.Duration) BatchResult {
	summary := BatchResult{
		Results:          results,
		TotalProcessed:   len(results),
		ProcessingTimeMS: elapsed.Milliseconds(),
	}
	for _, r := range results {
		if r.Success() {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// Service is the resolution core shared by the CLI and the HTTP server.
// It owns no global state: cache and metrics are injected by the process
// root and shared by reference.
type Service struct {
	checker *Checker
	cache   *cache.ResponseCache
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService wires the resolution core together.
func NewService(registry crates.Registry, responseCache *cache.ResponseCache, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		checker: NewChecker(registry, logger),
		cache:   responseCache,
		metrics: recorder,
		logger:  logging.WithComponent(logger, "batch"),
	}
}

// ResolveOne answers a single-crate query, consulting the cache first.
func (s *Service) ResolveOne(ctx context.Context, name, version string) CheckResult {
	return s.checkCached(ctx, Query{Name: name, Version: version})
}

// ResolveBatch normalizes a batch input, executes it, and aggregates the
// outcomes. Only shape validation can fail, and it fails before any
// upstream call; per-item upstream failures are folded into results.
func (s *Service) ResolveBatch(ctx context.Context, input *BatchInput, opts Options) (BatchResult, error) {
	queries, err := input.Normalize()
	if err != nil {
		return BatchResult{}, err
	}

	start := time.Now()
	results := s.Execute(ctx, queries, opts)
	summary := Aggregate(results, time.Since(start))

	s.logger.Info("batch completed",
		"input", input.Kind.String(),
		"total", summary.TotalProcessed,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"elapsed_ms", summary.ProcessingTimeMS,
		"parallel", opts.Parallel)
	return summary, nil
}

// Execute runs the checker over normalized queries. Result order matches
// query order 1:1 regardless of mode; in parallel mode each task carries
// its original index and writes into the results slice by index, so
// completion order never leaks to the caller.
func (s *Service) Execute(ctx context.Context, queries []Query, opts Options) []CheckResult {
	results := make([]CheckResult, len(queries))

	if !opts.Parallel || len(queries) <= 1 {
		for i, q := range queries {
			results[i] = s.checkCached(ctx, q)
		}
		return results
	}

	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, query Query) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = s.checkCached(ctx, query)
		}(i, q)
	}
	wg.Wait()

	return results
}

// checkCached consults the response cache before performing a real check.
// Error-free results are stored for reuse; failed checks are never cached
// so a transient upstream failure does not stick for a full TTL.
func (s *Service) checkCached(ctx context.Context, query Query) CheckResult {
	start := time.Now()
	key := query.CacheKey()

	if payload, ok := s.cache.Get(key); ok {
		var cached CheckResult
		if err := json.Unmarshal(payload, &cached); err == nil {
			s.metrics.RecordCacheHit()
			s.metrics.RecordRequest(cached.Success(), time.Since(start))
			return cached
		}
		// Undecodable payload counts as a miss and falls through.
	}
	s.metrics.RecordCacheMiss()

	result := s.checker.Check(ctx, query)

	if s.cache.Enabled() && result.Error == "" {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.Set(key, payload)
		}
	}

	s.metrics.RecordRequest(result.Success(), time.Since(start))
	return result
}
