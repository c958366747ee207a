package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTree builds a small project tree with deny-listed and hidden
// entries mixed in.
func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"main.go",
		"README.md",
		"src/app.go",
		"src/util/helper.go",
		"node_modules/pkg/index.js",
		".git/config",
		".hidden.txt",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))
	}
	return root
}

func findFilesArgs(t *testing.T, path, pattern string, depth int) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(findFilesInput{Path: path, Pattern: pattern, Depth: depth})
	require.NoError(t, err)
	return raw
}

func TestFindFilesBasic(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	result, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "*.go", 1))
	require.NoError(t, err)
	require.False(t, result.IsError, result.Content)

	assert.Contains(t, result.Content, "Files:")
	assert.Contains(t, result.Content, "* main.go")
	assert.NotContains(t, result.Content, "app.go", "depth 1 should not descend into src")
	assert.Contains(t, result.Content, "Directories:")
	assert.Contains(t, result.Content, "no directories found")
}

func TestFindFilesDepth(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	result, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "*.go", 3))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Contains(t, result.Content, "* main.go")
	assert.Contains(t, result.Content, filepath.Join("src", "app.go"))
	assert.Contains(t, result.Content, filepath.Join("src", "util", "helper.go"))
}

func TestFindFilesMatchesDirectories(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	result, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "src", 1))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Contains(t, result.Content, "Directories:")
	assert.Contains(t, result.Content, "* src")
}

func TestFindFilesSubstringWidening(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	// "main" has no wildcard, so it matches as a substring.
	result, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "main", 1))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, result.Content, "* main.go")
}

func TestFindFilesExcludesDeniedAndHidden(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	result, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "*", 5))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.NotContains(t, result.Content, "node_modules")
	assert.NotContains(t, result.Content, ".git")
	assert.NotContains(t, result.Content, ".hidden.txt")
}

func TestFindFilesEmptyResult(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	result, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "*.rs", 2))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Contains(t, result.Content, "no files found")
	assert.Contains(t, result.Content, "no directories found")
}

func TestFindFilesErrors(t *testing.T) {
	root := setupTree(t)
	tool := NewFindFilesTool(root)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"nonexistent", "missing", "does not exist"},
		{"file not directory", "main.go", "is a file, not a directory"},
		{"outside root", "../..", "not within the working root"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), findFilesArgs(t, tt.path, "*", 1))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, result.Content, tt.want)
		})
	}
}

func TestFindFilesCaseSensitivity(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Makefile"), []byte("all:\n"), 0o644))
	tool := NewFindFilesTool(root)

	insensitive, err := tool.Execute(context.Background(), findFilesArgs(t, ".", "makefile", 1))
	require.NoError(t, err)
	assert.Contains(t, insensitive.Content, "* Makefile")

	raw, err := json.Marshal(findFilesInput{Path: ".", Pattern: "makefile", Depth: 1, CaseSensitive: true})
	require.NoError(t, err)
	sensitive, err := tool.Execute(context.Background(), raw)
	require.NoError(t, err)
	assert.Contains(t, sensitive.Content, "no files found")
}

func TestDeniedPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"node_modules", true},
		{filepath.Join("node_modules", "pkg", "index.js"), true},
		{"app.wasm", true},
		{"archive.zip", true},
		{"main.go", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, deniedPath(tt.path), fmt.Sprintf("deniedPath(%q)", tt.path))
		})
	}
}

func TestHiddenPath(t *testing.T) {
	assert.True(t, hiddenPath(".env"))
	assert.True(t, hiddenPath(filepath.Join("src", ".cache", "x.txt")))
	assert.False(t, hiddenPath("main.go"))
	assert.False(t, hiddenPath(filepath.Join("src", "app.go")))
}
