// Package internal contains the core implementation packages for
// crate-checker.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the crate-checker CLI and HTTP API.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - cache: Response cache with per-entry TTL expiry
//   - checker: Batch input normalization, check execution, and aggregation
//   - config: Configuration management with layered precedence
//   - crates: HTTP client for the crates.io registry API
//   - errors: Structured error taxonomy and HTTP status mapping
//   - logging: Structured logging built on log/slog
//   - metrics: Atomic operation counters and snapshots
//   - output: Rendering in table, JSON, YAML, compact, and CSV formats
//   - server: HTTP API server exposing the resolution core
//   - watcher: Debounced file watching for the watch command
//
// # Inter-Package Communication
//
// The checker package is the hub: it consumes the crates client through
// the Registry interface, amortizes lookups through the cache, and
// reports into the metrics recorder. The CLI and the server are thin
// layers over the same checker.Service, so both surfaces share caching
// and counting behavior for free.
//
// All upstream-facing operations take a context.Context and classify
// failures through the errors package, which both surfaces map onto
// exit codes and HTTP status codes respectively.
package internal
