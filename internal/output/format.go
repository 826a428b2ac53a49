// Package output renders command results in the formats the CLI
// supports: human-readable tables, JSON, YAML, compact JSON, and CSV.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	checkererrors "github.com/sandlbn/crate-checker/internal/errors"
)

// Format identifies an output rendering.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatCompact Format = "compact"
	FormatCSV     Format = "csv"
)

// ParseFormat validates a format name from a CLI flag.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatCompact:
		return FormatCompact, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", checkererrors.NewValidationError("invalid_format",
			fmt.Sprintf("unknown output format %q (expected table, json, yaml, compact, or csv)", name))
	}
}

// Structured reports whether the format is machine-readable; logging is
// suppressed for structured formats so stdout stays parseable.
func (f Format) Structured() bool {
	return f != FormatTable
}

// Render writes v to w in the requested format. Table rendering is the
// responsibility of individual commands; here it falls back to pretty
// JSON, matching the behavior for data without a table shape.
func Render(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON, FormatTable:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatCompact:
		return json.NewEncoder(w).Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	case FormatCSV:
		return renderCSV(w, v)
	default:
		return checkererrors.NewValidationError("invalid_format", string(format))
	}
}

// renderCSV emits rows for a slice of flat objects. Non-array values fall
// back to pretty JSON.
func renderCSV(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	headers := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(headers))
		for i, h := range headers {
			record[i] = stringify(row[h])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		raw, _ := json.Marshal(val)
		return string(raw)
	}
}

// Table is a minimal column-aligned text table for human output.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row of cell values.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Write renders the table with aligned columns.
func (t *Table) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.headers, "\t"))

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dividers, "\t"))

	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
