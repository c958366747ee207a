package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceResolveRelative(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))
	ws := newWorkspace(root)

	path, err := ws.resolve("a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.root, "a.txt"), path)
}

func TestWorkspaceResolveEmptyIsRoot(t *testing.T) {
	ws := newWorkspace(t.TempDir())

	path, err := ws.resolve("")
	require.NoError(t, err)
	assert.Equal(t, ws.root, path)
}

func TestWorkspaceResolveRejectsEscape(t *testing.T) {
	ws := newWorkspace(t.TempDir())

	_, err := ws.resolve("../outside.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not within the working root")

	_, err = ws.resolve("/etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not within the working root")
}

func TestWorkspaceResolveDotDotInside(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))
	ws := newWorkspace(root)

	// ../ that stays inside the root is fine.
	path, err := ws.resolve("sub/../a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.root, "a.txt"), path)
}

func TestWorkspaceResolveSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")))
	ws := newWorkspace(root)

	_, err := ws.resolve("link.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not within the working root")
}

func TestWorkspaceResolveNonexistentPasses(t *testing.T) {
	ws := newWorkspace(t.TempDir())

	// The lexical check alone applies; the caller stats and reports.
	path, err := ws.resolve("missing.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.root, "missing.txt"), path)
}
