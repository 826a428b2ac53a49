// Package crates implements the HTTP client for the crates.io registry
// API. It exposes single-crate operations only; batch orchestration lives
// in the checker package.
package crates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"time"

	checkererrors "github.com/sandlbn/crate-checker/internal/errors"
	"github.com/sandlbn/crate-checker/internal/logging"
)

// Registry is the upstream contract consumed by the checker. The concrete
// Client implements it; tests substitute fakes.
type Registry interface {
	CrateExists(ctx context.Context, name string) (bool, error)
	GetCrateInfo(ctx context.Context, name string) (*CrateInfo, error)
	ListVersions(ctx context.Context, name string) ([]Version, error)
	GetDependencies(ctx context.Context, name, version string) ([]Dependency, error)
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateCrateName checks a crate name against the registry's naming
// rules: non-empty, at most 64 characters, alphanumerics plus '-' and '_'.
func ValidateCrateName(name string) error {
	if name == "" {
		return checkererrors.NewInvalidCrateName(name, "name cannot be empty")
	}
	if len(name) > 64 {
		return checkererrors.NewInvalidCrateName(name, "name cannot be longer than 64 characters")
	}
	if !namePattern.MatchString(name) {
		return checkererrors.NewInvalidCrateName(name, "name must match "+namePattern.String())
	}
	return nil
}

// Client talks to the crates.io HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

var _ Registry = (*Client)(nil)

// ClientOption customizes a Client during construction.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(agent string) ClientOption {
	return func(c *Client) { c.userAgent = agent }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithHTTPClient substitutes the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logging.WithComponent(logger, "crates") }
}

// NewClient creates a registry client with the given options applied over
// sane defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://crates.io/api/v1",
		userAgent:  "crate-checker/1.0",
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CrateExists checks whether a crate is present in the registry. A 404 is
// a definitive "no", not an error; any other non-200 status is an error.
func (c *Client) CrateExists(ctx context.Context, name string) (bool, error) {
	if err := ValidateCrateName(name); err != nil {
		return false, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, url.PathEscape(name)))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		c.logger.Debug("crate exists", "crate", name)
		return true, nil
	case http.StatusNotFound:
		c.logger.Debug("crate not found", "crate", name)
		return false, nil
	default:
		c.logger.Warn("unexpected status on existence check", "crate", name, "status", resp.StatusCode)
		return false, checkererrors.FromStatusCode(resp.StatusCode)
	}
}

// GetCrateInfo fetches the full metadata record for a crate.
func (c *Client) GetCrateInfo(ctx context.Context, name string) (*CrateInfo, error) {
	if err := ValidateCrateName(name); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, url.PathEscape(name)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload crateResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, checkererrors.NewInternalError("failed to decode crate response", err)
		}
		return payload.toCrateInfo(), nil
	case http.StatusNotFound:
		return nil, checkererrors.NewCrateNotFound(name)
	default:
		return nil, checkererrors.FromStatusCode(resp.StatusCode)
	}
}

// GetLatestVersion returns the newest published version of a crate.
func (c *Client) GetLatestVersion(ctx context.Context, name string) (string, error) {
	info, err := c.GetCrateInfo(ctx, name)
	if err != nil {
		return "", err
	}
	return info.NewestVersion, nil
}

// ListVersions fetches all published versions of a crate, newest first.
func (c *Client) ListVersions(ctx context.Context, name string) ([]Version, error) {
	if err := ValidateCrateName(name); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/crates/%s/versions", c.baseURL, url.PathEscape(name)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload versionsResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, checkererrors.NewInternalError("failed to decode versions response", err)
		}
		c.logger.Debug("fetched versions", "crate", name, "count", len(payload.Versions))
		return payload.Versions, nil
	case http.StatusNotFound:
		return nil, checkererrors.NewCrateNotFound(name)
	default:
		return nil, checkererrors.FromStatusCode(resp.StatusCode)
	}
}

// GetDependencies fetches the dependency list for a specific crate version.
func (c *Client) GetDependencies(ctx context.Context, name, version string) ([]Dependency, error) {
	if err := ValidateCrateName(name); err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/crates/%s/%s/dependencies",
		c.baseURL, url.PathEscape(name), url.PathEscape(version)))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload dependenciesResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, checkererrors.NewInternalError("failed to decode dependencies response", err)
		}
		return payload.Dependencies, nil
	case http.StatusNotFound:
		return nil, checkererrors.NewVersionNotFound(name, version)
	default:
		return nil, checkererrors.FromStatusCode(resp.StatusCode)
	}
}

// SearchCrates queries the registry search endpoint. Limit is capped at
// the API maximum of 100.
func (c *Client) SearchCrates(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, checkererrors.NewValidationError("empty_query", "search query cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/crates?q=%s", c.baseURL, url.QueryEscape(query))
	if limit > 0 {
		if limit > 100 {
			limit = 100
		}
		endpoint += fmt.Sprintf("&per_page=%d", limit)
	}

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, checkererrors.FromStatusCode(resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, checkererrors.NewInternalError("failed to decode search response", err)
	}
	c.logger.Debug("search completed", "query", query, "results", len(payload.Crates))
	return payload.Crates, nil
}

// GetDownloadStats combines total downloads from the crate record with the
// ten most-downloaded versions. A versions fetch failure degrades to a
// total-only result.
func (c *Client) GetDownloadStats(ctx context.Context, name string) (*DownloadStats, error) {
	info, err := c.GetCrateInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	stats := &DownloadStats{Total: info.Downloads}

	versions, err := c.ListVersions(ctx, name)
	if err != nil {
		return stats, nil
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Downloads > versions[j].Downloads
	})
	if len(versions) > 10 {
		versions = versions[:10]
	}
	for _, v := range versions {
		stats.Versions = append(stats.Versions, VersionDownload{
			Version:   v.Num,
			Downloads: v.Downloads,
			Date:      v.CreatedAt,
		})
	}
	return stats, nil
}

// CrateStatus classifies the publication state of a crate from its version
// list: all versions yanked, some yanked, or fully available.
func (c *Client) CrateStatus(ctx context.Context, name string) (Status, error) {
	versions, err := c.ListVersions(ctx, name)
	if err != nil {
		if checkererrors.IsNotFound(err) {
			return StatusNotFound, nil
		}
		return "", err
	}
	if len(versions) == 0 {
		return StatusNotFound, nil
	}

	yanked := 0
	for _, v := range versions {
		if v.Yanked {
			yanked++
		}
	}
	switch {
	case yanked == len(versions):
		return StatusYanked, nil
	case yanked > 0:
		return StatusPartiallyYanked, nil
	default:
		return StatusExists, nil
	}
}

// get issues a GET request with the configured User-Agent and classifies
// transport failures. Context cancellation and client timeouts surface as
// timeout errors; other transport failures as network errors.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, checkererrors.NewInternalError("failed to build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			return nil, checkererrors.NewTimeoutError("request timed out", err)
		}
		return nil, checkererrors.NewNetworkError("request to registry failed", err)
	}
	return resp, nil
}
