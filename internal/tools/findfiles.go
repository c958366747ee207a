package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// findFilesInput represents the input for the find_files tool.
type findFilesInput struct {
	Path          string `json:"path"`
	Pattern       string `json:"pattern"`
	Depth         int    `json:"depth,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

// FindFilesTool lists files and directories under a path whose relative
// path matches a Unix shell-style pattern, confined to the working root.
// Deny-listed artifact paths and dot-prefixed entries are filtered at
// every directory level before matching.
type FindFilesTool struct {
	ws workspace
}

// NewFindFilesTool creates a FindFilesTool confined to rootDir.
func NewFindFilesTool(rootDir string) *FindFilesTool {
	return &FindFilesTool{ws: newWorkspace(rootDir)}
}

func (f *FindFilesTool) Name() string {
	return "find_files"
}

func (f *FindFilesTool) Description() string {
	return "List files and directories under a path matching a Unix shell-style pattern " +
		"(e.g. '*.go', 'data*.csv'). A pattern without wildcards is treated as a substring match. " +
		"Results are limited to the given depth below the path."
}

func (f *FindFilesTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Directory to search, relative to the working root"
			},
			"pattern": {
				"type": "string",
				"description": "Unix shell-style pattern to match entries against"
			},
			"depth": {
				"type": "integer",
				"description": "Maximum directory depth below path (default 1)"
			},
			"case_sensitive": {
				"type": "boolean",
				"description": "Match case-sensitively (default false)"
			}
		},
		"required": ["path", "pattern"]
	}`)
}

func (f *FindFilesTool) Execute(_ context.Context, input json.RawMessage) (ToolResult, error) {
	var in findFilesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return ToolResult{Content: fmt.Sprintf("invalid input: %s", err), IsError: true}, nil
	}
	if in.Depth <= 0 {
		in.Depth = 1
	}

	slog.Info("find_files invoked", "path", in.Path, "pattern", in.Pattern, "depth", in.Depth)

	dir, err := f.ws.resolve(in.Path)
	if err != nil {
		return ToolResult{Content: "Error: " + err.Error(), IsError: true}, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Error: %s does not exist", dir), IsError: true}, nil
	}
	if !info.IsDir() {
		return ToolResult{Content: fmt.Sprintf("Error: %s is a file, not a directory", dir), IsError: true}, nil
	}

	pattern := widenPattern(in.Pattern)

	var files, dirs []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == dir {
			return nil
		}

		rel := relTo(dir, path)
		level := len(strings.Split(filepath.ToSlash(rel), "/"))

		if deniedPath(rel) || hiddenPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if level > in.Depth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if matchGlob(pattern, rel, in.CaseSensitive) {
			if d.IsDir() {
				dirs = append(dirs, rel)
			} else {
				files = append(files, rel)
			}
		}
		return nil
	})
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Error: walking %s: %s", dir, err), IsError: true}, nil
	}

	return ToolResult{Content: renderListing(files, dirs)}, nil
}

// renderListing formats the two-section result. Empty sections carry an
// explicit marker rather than being omitted.
func renderListing(files, dirs []string) string {
	var b strings.Builder
	b.WriteString("Files:")
	writeSection(&b, files, "no files found")
	b.WriteString("\n\nDirectories:")
	writeSection(&b, dirs, "no directories found")
	b.WriteString("\n")
	return b.String()
}

func writeSection(b *strings.Builder, entries []string, emptyMarker string) {
	if len(entries) == 0 {
		b.WriteString("\n  " + emptyMarker)
		return
	}
	for _, e := range entries {
		b.WriteString("\n  * " + e)
	}
}
