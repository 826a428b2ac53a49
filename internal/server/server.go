// Package server exposes the resolution core over HTTP. The API surface
// mirrors the CLI: single-crate lookups, version checks, dependencies,
// download stats, search, batch resolution, plus health and metrics
// endpoints. All state (cache, metrics, registry client) is injected by
// the process root and shared with the core by reference.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sandlbn/crate-checker/internal/cache"
	"github.com/sandlbn/crate-checker/internal/checker"
	"github.com/sandlbn/crate-checker/internal/config"
	"github.com/sandlbn/crate-checker/internal/crates"
	"github.com/sandlbn/crate-checker/internal/logging"
	"github.com/sandlbn/crate-checker/internal/metrics"
	"github.com/sandlbn/crate-checker/internal/version"
)

// Server is the crate-checker HTTP API server.
type Server struct {
	cfg        *config.Config
	client     *crates.Client
	service    *checker.Service
	cache      *cache.ResponseCache
	metrics    *metrics.Recorder
	logger     *slog.Logger
	httpServer *http.Server
}

// New builds a server and its dependency graph from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	client := crates.NewClient(
		crates.WithBaseURL(cfg.CratesIO.APIURL),
		crates.WithUserAgent(cfg.CratesIO.UserAgent),
		crates.WithTimeout(cfg.CratesIO.Timeout),
		crates.WithLogger(logger),
	)
	responseCache := cache.New(cfg.Cache.Enabled, cfg.Cache.TTL, cfg.Cache.MaxEntries)
	recorder := metrics.NewRecorder()
	service := checker.NewService(client, responseCache, recorder, logger)

	s := &Server{
		cfg:     cfg,
		client:  client,
		service: service,
		cache:   responseCache,
		metrics: recorder,
		logger:  logging.WithComponent(logger, "server"),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.BindAddress(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	}
	return s, nil
}

// routes wires the request mux and middleware chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /", s.handleIndex)

	mux.HandleFunc("GET /api/crates/{name}", s.handleCrate)
	mux.HandleFunc("GET /api/crates/{name}/stats", s.handleStats)
	mux.HandleFunc("GET /api/crates/{name}/status", s.handleCrateStatus)
	mux.HandleFunc("GET /api/crates/{name}/{version}", s.handleCrateVersion)
	mux.HandleFunc("GET /api/crates/{name}/{version}/deps", s.handleDependencies)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/batch", s.handleBatch)

	var handler http.Handler = mux
	if s.cfg.Server.EnableCORS {
		handler = corsMiddleware(handler)
	}
	handler = s.loggingMiddleware(handler)
	return handler
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully with a bounded drain period.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			"addr", s.httpServer.Addr,
			"version", version.Version)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// corsMiddleware allows cross-origin GET/POST requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware records one structured log line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
