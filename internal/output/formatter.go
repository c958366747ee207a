package output

import "encoding/json"

// RunResult is the single terminal record produced by a workflow run.
// Exactly one is produced per run: either success with the payload fields
// populated, or failure with an error message and nil payloads. Every
// key is always present in the JSON encoding; a failed run serializes
// its payloads as null rather than dropping them.
type RunResult struct {
	RunID      string          `json:"run_id"`
	Workflow   string          `json:"workflow"`
	EntryURL   string          `json:"entry_url"`
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
	Clusters   json.RawMessage `json:"clusters"`
	Reviews    json.RawMessage `json:"reviews"`
	Summary    string          `json:"summary"`
	DurationMs int64           `json:"duration_ms"`
}

// Formatter formats a RunResult into output bytes.
type Formatter interface {
	Format(result *RunResult) ([]byte, error)
}
