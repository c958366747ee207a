package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/output"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRecordAndListRuns(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.RecordRun(&output.RunResult{
		RunID:      "run-a",
		Workflow:   "review",
		EntryURL:   "https://github.com/acme/widgets/pull/1",
		Success:    true,
		Summary:    "fine",
		DurationMs: 900,
	}))
	require.NoError(t, st.RecordRun(&output.RunResult{
		RunID:    "run-b",
		Workflow: "resolve",
		EntryURL: "https://github.com/acme/widgets/issues/2",
		Success:  false,
		Error:    "stage analyze_issue: boom",
	}))

	records, err := st.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]RunRecord{}
	for _, r := range records {
		byID[r.ID] = r
	}

	a := byID["run-a"]
	assert.Equal(t, "review", a.Workflow)
	assert.True(t, a.Success)
	assert.Equal(t, "fine", a.Summary)
	assert.EqualValues(t, 900, a.DurationMs)
	assert.False(t, a.CreatedAt.IsZero())

	b := byID["run-b"]
	assert.False(t, b.Success)
	assert.Equal(t, "stage analyze_issue: boom", b.Error)
}

func TestListRunsLimit(t *testing.T) {
	st := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, st.RecordRun(&output.RunResult{
			RunID:    fmt.Sprintf("run-%d", i),
			Workflow: "review",
			EntryURL: "https://github.com/acme/widgets/pull/1",
			Success:  true,
		}))
	}

	records, err := st.ListRuns(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Non-positive limit falls back to the default.
	records, err = st.ListRuns(0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	st := newTestStore(t)

	result := &output.RunResult{RunID: "dup", Workflow: "review", EntryURL: "u", Success: true}
	require.NoError(t, st.RecordRun(result))
	require.Error(t, st.RecordRun(result))
}

func TestListRunsEmpty(t *testing.T) {
	st := newTestStore(t)

	records, err := st.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
