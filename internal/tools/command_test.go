package tools

import (
	"context"
	"encoding/json"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandArgs(t *testing.T, args ...string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(commandInput{Args: args})
	require.NoError(t, err)
	return raw
}

func TestCommandToolSuccess(t *testing.T) {
	tool := NewCommandTool("echo", t.TempDir(), 0)

	result, err := tool.Execute(context.Background(), commandArgs(t, "hello", "world"))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "hello world\n", result.Content)
}

func TestCommandToolName(t *testing.T) {
	tool := NewCommandTool("gh", t.TempDir(), 0)
	assert.Equal(t, "gh_cli", tool.Name())
}

func TestCommandToolNonZeroExit(t *testing.T) {
	// ls on a path that does not exist fails with a non-zero exit and
	// writes a diagnostic to stderr.
	tool := NewCommandTool("ls", t.TempDir(), 0)

	result, err := tool.Execute(context.Background(), commandArgs(t, "definitely-not-here"))
	require.NoError(t, err, "a failed command is a tool result, not a Go error")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "Error: command ls")
	assert.Contains(t, result.Content, "failed with exit code")
	assert.Contains(t, result.Content, "definitely-not-here")
}

func TestCommandToolTruncation(t *testing.T) {
	tool := NewCommandTool("echo", t.TempDir(), 10)

	result, err := tool.Execute(context.Background(), commandArgs(t, "0123456789abcdef"))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "0123456789"+truncatedMarker, result.Content)
}

func TestCommandToolTruncationKeepsRunesWhole(t *testing.T) {
	tool := NewCommandTool("echo", t.TempDir(), 4)

	result, err := tool.Execute(context.Background(), commandArgs(t, "日本語の出力テスト"))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "日本語の"+truncatedMarker, result.Content)
	assert.True(t, utf8.ValidString(result.Content))
}

func TestCommandToolNoTruncationWhenBudgetZero(t *testing.T) {
	tool := NewCommandTool("echo", t.TempDir(), 0)

	result, err := tool.Execute(context.Background(), commandArgs(t, "0123456789abcdef"))
	require.NoError(t, err)
	assert.NotContains(t, result.Content, truncatedMarker)
}

func TestCommandToolInvalidInput(t *testing.T) {
	tool := NewCommandTool("echo", t.TempDir(), 0)

	result, err := tool.Execute(context.Background(), json.RawMessage(`{"args": "not-an-array"}`))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "invalid input")
}

func TestNewCommandTools(t *testing.T) {
	dir := t.TempDir()

	toolset := NewCommandTools(dir, []string{"gh", "git"}, 10000)
	require.Len(t, toolset, 2)
	assert.Equal(t, "gh_cli", toolset[0].Name())
	assert.Equal(t, "git_cli", toolset[1].Name())

	empty := NewCommandTools(dir, nil, 10000)
	assert.Empty(t, empty)
}
