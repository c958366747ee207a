package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successResult() *RunResult {
	return &RunResult{
		RunID:      "run-1",
		Workflow:   "review",
		EntryURL:   "https://github.com/acme/widgets/pull/42",
		Success:    true,
		Clusters:   json.RawMessage(`{"clusters":[]}`),
		Reviews:    json.RawMessage(`[]`),
		Summary:    "## Code Review Summary\n\nAll good.",
		DurationMs: 1234,
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter().Format(successResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, "", decoded["error"])
}

func TestJSONFormatterFailureHasNullPayloads(t *testing.T) {
	result := &RunResult{
		RunID:    "run-2",
		Workflow: "review",
		EntryURL: "ftp://github.com/x/y/pull/1",
		Success:  false,
		Error:    "invalid pr_url format",
	}
	out, err := NewJSONFormatter().Format(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "invalid pr_url format", decoded["error"])

	// Payload keys stay present on failure, serialized as null/empty.
	require.Contains(t, decoded, "clusters")
	assert.Nil(t, decoded["clusters"])
	require.Contains(t, decoded, "reviews")
	assert.Nil(t, decoded["reviews"])
	assert.Equal(t, "", decoded["summary"])
}

func TestMarkdownFormatterSuccess(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(successResult())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "# review run run-1")
	assert.Contains(t, text, "https://github.com/acme/widgets/pull/42")
	assert.Contains(t, text, "Code Review Summary")
	assert.Contains(t, text, "Completed in")
}

func TestMarkdownFormatterFailure(t *testing.T) {
	result := &RunResult{
		RunID:    "run-3",
		Workflow: "resolve",
		EntryURL: "https://github.com/acme/widgets/issues/7",
		Success:  false,
		Error:    "stage analyze_issue: boom",
	}
	out, err := NewMarkdownFormatter().Format(result)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "## Error")
	assert.Contains(t, text, "stage analyze_issue: boom")
	assert.NotContains(t, text, "Completed in")
}
