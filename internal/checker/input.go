package checker

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sandlbn/crate-checker/internal/crates"
	checkererrors "github.com/sandlbn/crate-checker/internal/errors"
)

// LatestSentinel is the version string meaning "no specific version
// constraint".
const LatestSentinel = "latest"

// InputKind discriminates the three recognized batch input shapes.
type InputKind int

const (
	// InputVersionMap maps crate names to version strings.
	InputVersionMap InputKind = iota
	// InputNameList is an ordered list of crate names, checked at latest.
	InputNameList
	// InputOperationList is a list of labelled operations over single or
	// multiple crates.
	InputOperationList
)

// String returns the canonical name of the input kind.
func (k InputKind) String() string {
	switch k {
	case InputVersionMap:
		return "version_map"
	case InputNameList:
		return "name_list"
	case InputOperationList:
		return "operation_list"
	default:
		return "unknown"
	}
}

// BatchInput is the tagged union over the three batch request shapes.
// Exactly one of the payload fields is populated, according to Kind.
type BatchInput struct {
	Kind       InputKind
	VersionMap map[string]string
	Names      []string
	Operations []Operation
}

// Operation is one entry of an operation-list input. The target is either
// a single crate with an optional version (Crate set) or a group of
// crates (Crates set). The label is informational only.
type Operation struct {
	Crate     string   `json:"crate,omitempty"`
	Version   string   `json:"version,omitempty"`
	Crates    []string `json:"crates,omitempty"`
	Operation string   `json:"operation"`
}

// Query is one normalized per-crate check request. Version is empty when
// no specific version was requested; the "latest" sentinel is preserved
// as written by the caller.
type Query struct {
	Name    string
	Version string
}

// CacheKey derives the response-cache key for this query. Queries without
// a version constraint share a key with explicit "latest" requests.
func (q Query) CacheKey() string {
	v := q.Version
	if v == "" {
		v = LatestSentinel
	}
	return q.Name + "@" + v
}

// nameListEnvelope and operationListEnvelope are the wire shapes for the
// two keyed input variants.
type nameListEnvelope struct {
	Crates []string `json:"crates"`
}

type operationListEnvelope struct {
	Operations []Operation `json:"operations"`
}

// ParseBatchInput decodes raw JSON into one of the three batch shapes.
// Shapes are tried in a fixed priority order: version map, then name
// list, then operation list. Input matching none of them is rejected.
func ParseBatchInput(raw []byte) (*BatchInput, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, checkererrors.NewInvalidBatchInput(fmt.Sprintf("input is not a JSON object: %v", err))
	}

	// Priority 1: a flat map of name -> version string.
	var versionMap map[string]string
	if err := json.Unmarshal(raw, &versionMap); err == nil {
		return &BatchInput{Kind: InputVersionMap, VersionMap: versionMap}, nil
	}

	// Priority 2: {"crates": [...]}.
	if _, ok := probe["crates"]; ok {
		var envelope nameListEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, checkererrors.NewInvalidBatchInput(
				"invalid crates list format, expected an array of strings")
		}
		return &BatchInput{Kind: InputNameList, Names: envelope.Crates}, nil
	}

	// Priority 3: {"operations": [...]}.
	if _, ok := probe["operations"]; ok {
		var envelope operationListEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, checkererrors.NewInvalidBatchInput(
				"invalid operations format, expected an array of operation objects")
		}
		return &BatchInput{Kind: InputOperationList, Operations: envelope.Operations}, nil
	}

	return nil, checkererrors.NewInvalidBatchInput("unrecognized batch input shape")
}

// ParseBatchFile reads and decodes a batch input file.
func ParseBatchFile(path string) (*BatchInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, checkererrors.NewValidationError("batch_file", fmt.Sprintf("failed to read batch file: %v", err))
	}
	return ParseBatchInput(raw)
}

// Validate checks shape-level constraints before any upstream call: no
// empty collections, no empty crate names, no operation without a label.
func (in *BatchInput) Validate() error {
	switch in.Kind {
	case InputVersionMap:
		if len(in.VersionMap) == 0 {
			return checkererrors.NewValidationError("empty_input", "crate version map cannot be empty")
		}
		for name, version := range in.VersionMap {
			if name == "" {
				return checkererrors.NewValidationError("empty_name", "crate name cannot be empty")
			}
			if version == "" {
				return checkererrors.NewValidationError("empty_version",
					fmt.Sprintf("version for crate %q cannot be empty", name))
			}
		}
	case InputNameList:
		if len(in.Names) == 0 {
			return checkererrors.NewValidationError("empty_input", "crates list cannot be empty")
		}
		for _, name := range in.Names {
			if name == "" {
				return checkererrors.NewValidationError("empty_name", "crate name cannot be empty")
			}
		}
	case InputOperationList:
		if len(in.Operations) == 0 {
			return checkererrors.NewValidationError("empty_input", "operations list cannot be empty")
		}
		for _, op := range in.Operations {
			if op.Operation == "" {
				return checkererrors.NewValidationError("empty_operation", "operation label cannot be empty")
			}
			if op.Crate == "" && len(op.Crates) == 0 {
				return checkererrors.NewValidationError("empty_target", "operation has no target crates")
			}
		}
	default:
		return checkererrors.NewInvalidBatchInput("unrecognized batch input shape")
	}
	return nil
}

// Normalize produces the ordered query sequence for this input. Name-list
// and operation-list order is preserved; version-map iteration order is
// sorted by name so it is stable within a call. Multiple-crate targets
// expand in place, one query per name with no version constraint.
func (in *BatchInput) Normalize() ([]Query, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var queries []Query
	switch in.Kind {
	case InputVersionMap:
		names := make([]string, 0, len(in.VersionMap))
		for name := range in.VersionMap {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			queries = append(queries, Query{Name: name, Version: in.VersionMap[name]})
		}
	case InputNameList:
		for _, name := range in.Names {
			queries = append(queries, Query{Name: name})
		}
	case InputOperationList:
		for _, op := range in.Operations {
			if op.Crate != "" {
				queries = append(queries, Query{Name: op.Crate, Version: op.Version})
				continue
			}
			for _, name := range op.Crates {
				queries = append(queries, Query{Name: name})
			}
		}
	}

	for _, q := range queries {
		if err := crates.ValidateCrateName(q.Name); err != nil {
			return nil, err
		}
	}
	return queries, nil
}
