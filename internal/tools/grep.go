package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sourcegraph/conc/pool"
)

// grepInput represents the input for the find_text_in_files tool.
type grepInput struct {
	Pattern       string `json:"pattern"`
	Path          string `json:"path"`
	Recursive     *bool  `json:"recursive,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

// GrepTool matches a Unix shell-style pattern against each line of every
// non-deny-listed file under a path, confined to the working root.
//
// The pattern is applied to the entire line including leading whitespace,
// so 'class T*' matches 'class Team:' but not an indented '    class
// Team:'. A pattern without wildcards is widened to a substring match.
type GrepTool struct {
	ws workspace
}

// NewGrepTool creates a GrepTool confined to rootDir.
func NewGrepTool(rootDir string) *GrepTool {
	return &GrepTool{ws: newWorkspace(rootDir)}
}

func (g *GrepTool) Name() string {
	return "find_text_in_files"
}

func (g *GrepTool) Description() string {
	return "Find lines matching a Unix shell-style pattern in a file or every file under a " +
		"directory. The pattern must match the entire line, including leading whitespace: " +
		"'class T*' matches 'class Team:' but not an indented variant; '*class Team*' matches " +
		"both. A pattern without wildcards is treated as a substring match. Returns matches " +
		"grouped by file with 1-based line numbers."
}

func (g *GrepTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"pattern": {
				"type": "string",
				"description": "Unix shell-style pattern matched against each full line"
			},
			"path": {
				"type": "string",
				"description": "File or directory to search, relative to the working root"
			},
			"recursive": {
				"type": "boolean",
				"description": "Recurse into subdirectories (default true)"
			},
			"case_sensitive": {
				"type": "boolean",
				"description": "Match case-sensitively (default false)"
			}
		},
		"required": ["pattern", "path"]
	}`)
}

func (g *GrepTool) Execute(ctx context.Context, input json.RawMessage) (ToolResult, error) {
	var in grepInput
	if err := json.Unmarshal(input, &in); err != nil {
		return ToolResult{Content: fmt.Sprintf("invalid input: %s", err), IsError: true}, nil
	}
	recursive := in.Recursive == nil || *in.Recursive

	slog.Info("find_text_in_files invoked",
		"path", in.Path, "pattern", in.Pattern, "recursive", recursive)

	if in.Pattern == "*" {
		return ToolResult{Content: "Error: pattern * is too broad, provide a more specific pattern", IsError: true}, nil
	}
	pattern := widenPattern(in.Pattern)

	target, err := g.ws.resolve(in.Path)
	if err != nil {
		return ToolResult{Content: "Error: " + err.Error(), IsError: true}, nil
	}

	info, err := os.Stat(target)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Error: %s does not exist", target), IsError: true}, nil
	}

	var paths []string
	if !info.IsDir() {
		paths = []string{target}
	} else {
		paths, err = g.collectFiles(target, recursive)
		if err != nil {
			return ToolResult{Content: fmt.Sprintf("Error: walking %s: %s", target, err), IsError: true}, nil
		}
	}

	matches := g.scanFiles(ctx, target, paths, pattern, in.CaseSensitive)
	if len(matches) == 0 {
		return ToolResult{Content: "Error: no matches found", IsError: true}, nil
	}

	rels := make([]string, 0, len(matches))
	for rel := range matches {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	var b strings.Builder
	for _, rel := range rels {
		fmt.Fprintf(&b, "\nPattern matches found in '%s':\n", rel)
		b.WriteString(strings.Join(matches[rel], "\n"))
	}
	return ToolResult{Content: b.String()}, nil
}

// collectFiles gathers the candidate files under dir, honoring the
// deny-list and dot-entry exclusions at every level.
func (g *GrepTool) collectFiles(dir string, recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		var out []string
		for _, e := range entries {
			if e.IsDir() || deniedPath(e.Name()) || hiddenPath(e.Name()) {
				continue
			}
			out = append(out, filepath.Join(dir, e.Name()))
		}
		return out, nil
	}

	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == dir {
			return nil
		}
		rel := relTo(dir, path)
		if deniedPath(rel) || hiddenPath(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// scanFiles matches every line of each file against the pattern using a
// bounded worker pool. Results are keyed by path relative to base;
// unreadable files are skipped with a warning. The pool is internal to
// this one call and output order is restored by the caller's sort, so
// nothing observable is reordered.
func (g *GrepTool) scanFiles(ctx context.Context, base string, paths []string, pattern string, caseSensitive bool) map[string][]string {
	matches := make(map[string][]string)
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(grepWorkers)
	for _, path := range paths {
		path := path
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			lines, err := scanFile(path, pattern, caseSensitive)
			if err != nil {
				slog.Warn("skipping unreadable file", "path", path, "error", err)
				return
			}
			if len(lines) == 0 {
				return
			}
			mu.Lock()
			matches[relTo(base, path)] = lines
			mu.Unlock()
		})
	}
	p.Wait()

	return matches
}

// scanFile returns the rendered match lines for a single file. Lines
// beyond the character limit are redacted rather than echoed, to bound
// result size; a redacted line still reports its line number, and never
// fails the rest of the file.
func scanFile(path, pattern string, caseSensitive bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	r := bufio.NewReader(f)
	lineNum := 0
	for {
		line, readErr := readLine(r)
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		if line == "" && readErr == io.EOF {
			break
		}
		lineNum++
		if matchGlob(pattern, line, caseSensitive) {
			if utf8.RuneCountInString(line) > lineCharLimit {
				out = append(out, fmt.Sprintf("Line %d: <line too long>", lineNum))
			} else {
				out = append(out, fmt.Sprintf("Line %d: %s", lineNum, strings.TrimSpace(line)))
			}
		}
		if readErr == io.EOF {
			break
		}
	}
	return out, nil
}

// readLine reads one line of any length, with the trailing newline (and
// any carriage return before it) stripped. io.EOF is returned alongside
// the final line of a file with no trailing newline.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}
