// Package checker implements the batch resolution core: normalizing
// heterogeneous batch inputs into per-crate queries, executing them
// sequentially or with bounded concurrency against the registry client,
// folding outcomes into summary statistics, and amortizing repeated
// lookups through the response cache.
package checker

import (
	"context"
	"log/slog"

	"github.com/sandlbn/crate-checker/internal/crates"
	"github.com/sandlbn/crate-checker/internal/logging"
)

// CheckResult is the outcome of checking one crate. Produced exactly once
// per query and never mutated afterwards.
//
// Error is set only when the existence check itself failed at the
// transport layer. A crate that simply does not exist has Exists=false
// and no error. Metadata and version-existence lookups are best-effort:
// their failure leaves the corresponding fields unset without erasing an
// otherwise valid existence result.
type CheckResult struct {
	CrateName        string            `json:"crate_name"`
	Exists           bool              `json:"exists"`
	LatestVersion    string            `json:"latest_version,omitempty"`
	RequestedVersion string            `json:"requested_version,omitempty"`
	VersionExists    *bool             `json:"version_exists,omitempty"`
	Error            string            `json:"error,omitempty"`
	Info             *crates.CrateInfo `json:"info,omitempty"`
}

// Success reports whether this result counts as successful: the existence
// check completed without error and the crate exists.
func (r CheckResult) Success() bool {
	return r.Error == "" && r.Exists
}

// Checker answers single-crate queries against the registry.
type Checker struct {
	registry crates.Registry
	logger   *slog.Logger
}

// NewChecker creates a single-item checker over the given registry.
func NewChecker(registry crates.Registry, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Checker{
		registry: registry,
		logger:   logging.WithComponent(logger, "checker"),
	}
}

// Check resolves one query. It never fails: upstream errors are folded
// into the result so batch execution cannot abort on one bad item.
//
// Existence is authoritative and short-circuits. Metadata and
// version-existence are enrichments that degrade silently.
func (c *Checker) Check(ctx context.Context, query Query) CheckResult {
	result := CheckResult{
		CrateName:        query.Name,
		RequestedVersion: query.Version,
	}

	exists, err := c.registry.CrateExists(ctx, query.Name)
	if err != nil {
		c.logger.Debug("existence check failed", "crate", query.Name, "error", err)
		result.Error = err.Error()
		return result
	}
	if !exists {
		return result
	}
	result.Exists = true

	if info, err := c.registry.GetCrateInfo(ctx, query.Name); err == nil {
		result.Info = info
		result.LatestVersion = info.NewestVersion
	} else {
		c.logger.Debug("metadata fetch failed, leaving info unset",
			"crate", query.Name, "error", err)
	}

	if query.Version != "" {
		if query.Version == LatestSentinel {
			t := true
			result.VersionExists = &t
		} else if versions, err := c.registry.ListVersions(ctx, query.Name); err == nil {
			found := false
			for _, v := range versions {
				if v.Num == query.Version {
					found = true
					break
				}
			}
			result.VersionExists = &found
		} else {
			c.logger.Debug("version list fetch failed, leaving version_exists unset",
				"crate", query.Name, "error", err)
		}
	}

	return result
}
