package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// readFileInput represents the input for the read_file tool.
type readFileInput struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// ReadFileTool returns file contents, optionally restricted to an
// inclusive 1-based line range, confined to the working root.
type ReadFileTool struct {
	ws workspace
}

// NewReadFileTool creates a ReadFileTool confined to rootDir.
func NewReadFileTool(rootDir string) *ReadFileTool {
	return &ReadFileTool{ws: newWorkspace(rootDir)}
}

func (r *ReadFileTool) Name() string {
	return "read_file"
}

func (r *ReadFileTool) Description() string {
	return fmt.Sprintf("Read the contents of a file, optionally restricted to an inclusive "+
		"1-based line range. Output longer than %d characters is truncated with a %s marker.",
		readCharLimit, truncatedMarker)
}

func (r *ReadFileTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "File to read, relative to the working root"
			},
			"start_line": {
				"type": "integer",
				"description": "First line to read (1-based, optional)"
			},
			"end_line": {
				"type": "integer",
				"description": "Last line to read (inclusive, optional)"
			}
		},
		"required": ["path"]
	}`)
}

func (r *ReadFileTool) Execute(_ context.Context, input json.RawMessage) (ToolResult, error) {
	var in readFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return ToolResult{Content: fmt.Sprintf("invalid input: %s", err), IsError: true}, nil
	}

	slog.Info("read_file invoked", "path", in.Path, "start", in.StartLine, "end", in.EndLine)

	path, err := r.ws.resolve(in.Path)
	if err != nil {
		return ToolResult{Content: "Error: " + err.Error(), IsError: true}, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Error: %s does not exist", path), IsError: true}, nil
	}
	if info.IsDir() {
		return ToolResult{Content: fmt.Sprintf("Error: %s is not a file", path), IsError: true}, nil
	}

	var content string
	if in.StartLine == 0 && in.EndLine == 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return ToolResult{Content: fmt.Sprintf("Error: reading %s: %s", path, err), IsError: true}, nil
		}
		content = string(data)
	} else {
		content, err = readLineRange(path, in.StartLine, in.EndLine)
		if err != nil {
			return ToolResult{Content: fmt.Sprintf("Error: reading %s: %s", path, err), IsError: true}, nil
		}
	}

	if cut, truncated := truncateRunes(content, readCharLimit); truncated {
		content = cut + "\n" + truncatedMarker
	}
	return ToolResult{Content: content}, nil
}

// readLineRange reads lines start..end inclusive (1-based). A zero start
// reads from the beginning; a zero end reads to the end of the file.
func readLineRange(path string, start, end int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	r := bufio.NewReader(f)
	lineNum := 0
	for {
		line, readErr := readLine(r)
		if readErr != nil && readErr != io.EOF {
			return "", readErr
		}
		if line == "" && readErr == io.EOF {
			break
		}
		lineNum++
		if end > 0 && lineNum > end {
			break
		}
		if start == 0 || lineNum >= start {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if readErr == io.EOF {
			break
		}
	}
	return b.String(), nil
}
