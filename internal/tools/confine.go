package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// workspace is the working-directory root every filesystem tool is
// confined to. The confinement rule: a resolved absolute path must equal
// the root or have it as an ancestor. Violations are reported as tool
// errors, never raised.
type workspace struct {
	root string
}

// newWorkspace resolves rootDir to a canonical absolute path. The root is
// resolved through EvalSymlinks so that symlink checks inside resolve
// compare against the canonical path.
func newWorkspace(rootDir string) workspace {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		abs = rootDir
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		resolved = abs
	}
	return workspace{root: resolved}
}

// resolve validates that path stays inside the root and returns its
// absolute form. Relative paths are resolved against the root; absolute
// paths are accepted only when they already point inside it. Both the
// lexical path and its symlink-resolved form are checked.
func (w workspace) resolve(path string) (string, error) {
	if path == "" {
		path = "."
	}

	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(w.root, candidate)
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("%s is not within the working root %s", path, w.root)
	}

	if !w.contains(abs) {
		return "", fmt.Errorf("%s is not within the working root %s: provide a path inside the root", abs, w.root)
	}

	// Resolve symlinks so a link inside the root cannot point outside it.
	// A path that does not exist yet passes the lexical check alone; the
	// caller stats it and reports nonexistence on its own terms.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("resolving %s: %v", path, err)
	}
	if !w.contains(resolved) {
		return "", fmt.Errorf("%s is not within the working root %s: symlink escapes the root", abs, w.root)
	}

	return resolved, nil
}

func (w workspace) contains(abs string) bool {
	return abs == w.root || strings.HasPrefix(abs, w.root+string(filepath.Separator))
}

// relTo returns path relative to base, falling back to the input.
func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
