package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandlbn/crate-checker/internal/checker"
)

// Every batch snippet the examples command shows must survive the same
// parse-and-validate path the batch command runs it through.
func TestExampleSnippetsAreValidBatchInputs(t *testing.T) {
	snippets := map[string]struct {
		raw  string
		kind checker.InputKind
	}{
		"version map":    {exampleVersionMap, checker.InputVersionMap},
		"crate list":     {exampleNameList, checker.InputNameList},
		"operation list": {exampleOperationList, checker.InputOperationList},
	}
	for name, tt := range snippets {
		t.Run(name, func(t *testing.T) {
			input, err := checker.ParseBatchInput([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, input.Kind)

			queries, err := input.Normalize()
			require.NoError(t, err)
			assert.NotEmpty(t, queries)
		})
	}
}

func TestExamplesTextEmbedsSnippets(t *testing.T) {
	for _, snippet := range []string{exampleVersionMap, exampleNameList, exampleOperationList} {
		assert.True(t, strings.Contains(examplesText, snippet))
	}
}

// The batch command's own help must not show inputs its parser rejects.
func TestBatchHelpOperationListIsValid(t *testing.T) {
	long := batchCmd.Long
	start := strings.Index(long, `{"operations"`)
	require.GreaterOrEqual(t, start, 0, "help text no longer shows an operation-list example")
	end := strings.Index(long[start:], "}]}")
	require.GreaterOrEqual(t, end, 0)
	snippet := long[start : start+end+3]

	input, err := checker.ParseBatchInput([]byte(snippet))
	require.NoError(t, err)
	assert.Equal(t, checker.InputOperationList, input.Kind)

	_, err = input.Normalize()
	require.NoError(t, err)
}
