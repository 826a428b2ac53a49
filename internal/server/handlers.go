package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sandlbn/crate-checker/internal/checker"
	checkererrors "github.com/sandlbn/crate-checker/internal/errors"
	"github.com/sandlbn/crate-checker/internal/version"
)

// healthResponse is the cache-bypassing health probe payload.
type healthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// batchOptions are the caller-controlled execution knobs for /api/batch.
type batchOptions struct {
	Parallel      bool  `json:"parallel"`
	MaxConcurrent int   `json:"max_concurrent"`
	TimeoutSecs   int64 `json:"timeout_seconds"`
}

// batchResponse wraps a batch result with request bookkeeping.
type batchResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	checker.BatchResult
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, apiDocs)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       version.Version,
		UptimeSeconds: int64(s.metrics.Uptime().Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// handleCrate serves crate metadata, cached under a key distinct from
// check results.
func (s *Server) handleCrate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.PathValue("name")

	cacheKey := "crate:" + name
	if payload, ok := s.cache.Get(cacheKey); ok {
		s.metrics.RecordCacheHit()
		s.metrics.RecordRequest(true, time.Since(start))
		writeRawJSON(w, http.StatusOK, payload)
		return
	}
	s.metrics.RecordCacheMiss()

	info, err := s.client.GetCrateInfo(r.Context(), name)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		s.writeError(w, err)
		return
	}

	if payload, err := json.Marshal(info); err == nil {
		s.cache.Set(cacheKey, payload)
	}
	s.metrics.RecordRequest(true, time.Since(start))
	writeJSON(w, http.StatusOK, info)
}

// handleCrateVersion answers "does this crate at this version exist" via
// the shared resolution core, which handles caching and metrics itself.
func (s *Server) handleCrateVersion(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	ver := r.PathValue("version")

	result := s.service.ResolveOne(r.Context(), name, ver)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.PathValue("name")
	ver := r.PathValue("version")

	if ver == checker.LatestSentinel {
		latest, err := s.client.GetLatestVersion(r.Context(), name)
		if err != nil {
			s.metrics.RecordRequest(false, time.Since(start))
			s.writeError(w, err)
			return
		}
		ver = latest
	}

	deps, err := s.client.GetDependencies(r.Context(), name, ver)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRequest(true, time.Since(start))
	writeJSON(w, http.StatusOK, deps)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.PathValue("name")

	stats, err := s.client.GetDownloadStats(r.Context(), name)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRequest(true, time.Since(start))
	writeJSON(w, http.StatusOK, stats)
}

// handleCrateStatus classifies a crate's publication state from its
// version list: exists, not_found, yanked, or partially_yanked. A missing
// crate is a valid classification, not a 404.
func (s *Server) handleCrateStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.PathValue("name")

	status, err := s.client.CrateStatus(r.Context(), name)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRequest(true, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"crate":  name,
		"status": status,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, checkererrors.NewValidationError("missing_query", "missing 'q' parameter"))
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := s.client.SearchCrates(r.Context(), query, limit)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		s.writeError(w, err)
		return
	}
	s.metrics.RecordRequest(true, time.Since(start))
	writeJSON(w, http.StatusOK, results)
}

// handleBatch accepts a batch input object with an optional embedded
// "options" key controlling parallelism. The remainder of the object is
// decoded as one of the three batch shapes.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, checkererrors.NewValidationError("body_too_large", "request body unreadable or too large"))
		return
	}

	input, opts, err := splitBatchRequest(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	execOpts := checker.Options{
		Parallel:      opts.Parallel,
		MaxConcurrent: opts.MaxConcurrent,
	}
	if execOpts.MaxConcurrent <= 0 {
		execOpts.MaxConcurrent = s.cfg.CratesIO.MaxConcurrent
	}

	ctx := r.Context()
	if opts.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutSecs)*time.Second)
		defer cancel()
	}

	result, err := s.service.ResolveBatch(ctx, input, execOpts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{
		RequestID:   newRequestID(),
		Status:      "completed",
		BatchResult: result,
	})
}

// splitBatchRequest separates the optional "options" key from the batch
// input payload, mirroring the flattened request format.
func splitBatchRequest(body []byte) (*checker.BatchInput, batchOptions, error) {
	var opts batchOptions

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, opts, checkererrors.NewInvalidBatchInput(fmt.Sprintf("request body is not a JSON object: %v", err))
	}

	if rawOpts, ok := probe["options"]; ok {
		if err := json.Unmarshal(rawOpts, &opts); err != nil {
			return nil, opts, checkererrors.NewInvalidBatchInput("invalid options object")
		}
		delete(probe, "options")
		var err error
		body, err = json.Marshal(probe)
		if err != nil {
			return nil, opts, checkererrors.NewInternalError("failed to re-encode batch input", err)
		}
	}

	input, err := checker.ParseBatchInput(body)
	if err != nil {
		return nil, opts, err
	}
	return input, opts, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := checkererrors.StatusCode(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error":     err.Error(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// newRequestID generates a random identifier for batch responses.
func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "00000000000000000000000000000000"
	}
	return hex.EncodeToString(buf)
}

const apiDocs = `crate-checker API

Endpoints:
  GET  /health                              Server health status
  GET  /metrics                             Operational metrics
  GET  /api/crates/{name}                   Crate metadata
  GET  /api/crates/{name}/{version}         Check a specific version
  GET  /api/crates/{name}/{version}/deps    Dependencies ("latest" allowed)
  GET  /api/crates/{name}/stats             Download statistics
  GET  /api/crates/{name}/status            Yank status classification
  GET  /api/search?q={query}&limit={n}      Search crates
  POST /api/batch                           Batch resolution

Batch input shapes:
  {"serde": "1.0.0", "tokio": "latest"}
  {"crates": ["serde", "tokio"]}
  {"operations": [{"crate": "serde", "version": "1.0.0", "operation": "check_version"}]}

Options can be embedded in the batch body:
  {"crates": ["serde"], "options": {"parallel": true, "max_concurrent": 4}}
`
