package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// commandInput represents the input for a command tool.
type commandInput struct {
	Args []string `json:"args"`
}

// CommandTool runs exactly one external program with caller-supplied
// arguments. The program name is fixed at construction and cannot be
// substituted at call time; a stage holding a set of command tools has
// exactly the privilege of the allowlist they were built from.
//
// Arguments are never interpreted through a shell: no piping, chaining,
// redirection, or substitution. Each invocation is one program plus its
// literal argument list.
type CommandTool struct {
	program string
	workDir string
	budget  int
}

// NewCommandTool creates a tool bound to the given program, run in
// workDir. Output longer than budget characters is truncated; a budget
// of zero disables truncation.
func NewCommandTool(program, workDir string, budget int) *CommandTool {
	return &CommandTool{program: program, workDir: workDir, budget: budget}
}

// NewCommandTools builds one CommandTool per allowlisted program, all
// sharing the working directory and truncation budget. An empty allowlist
// yields an empty slice.
func NewCommandTools(workDir string, programs []string, budget int) []Tool {
	out := make([]Tool, 0, len(programs))
	for _, p := range programs {
		out = append(out, NewCommandTool(p, workDir, budget))
	}
	return out
}

func (c *CommandTool) Name() string {
	return c.program + "_cli"
}

func (c *CommandTool) Description() string {
	desc := fmt.Sprintf("Run the %s command with the given arguments.", c.program)
	if c.budget > 0 {
		desc += fmt.Sprintf(" Output is truncated to %d characters, ending with %s when longer.", c.budget, truncatedMarker)
	}
	return desc
}

func (c *CommandTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"args": {
				"type": "array",
				"items": {"type": "string"},
				"description": "Arguments to pass to the command"
			}
		},
		"required": ["args"]
	}`)
}

// Execute runs the bound program. A non-zero exit is returned as a
// textual error result embedding the program, arguments, exit code, and
// stderr; the result feeds back into the model conversation, so it must
// stay representable as text.
func (c *CommandTool) Execute(ctx context.Context, input json.RawMessage) (ToolResult, error) {
	var in commandInput
	if err := json.Unmarshal(input, &in); err != nil {
		return ToolResult{Content: fmt.Sprintf("invalid input: %s", err), IsError: true}, nil
	}

	slog.Info("command tool invoked", "program", c.program, "args", in.Args)

	cmd := exec.CommandContext(ctx, c.program, in.Args...)
	cmd.Dir = c.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var msg string
		if ee, ok := err.(*exec.ExitError); ok {
			msg = fmt.Sprintf("Error: command %s %v failed with exit code %d: %s",
				c.program, in.Args, ee.ExitCode(), strings.TrimSpace(stderr.String()))
		} else {
			msg = fmt.Sprintf("Error: command %s %v failed to start: %s", c.program, in.Args, err)
		}
		slog.Error("command tool failed", "program", c.program, "error", msg)
		return ToolResult{Content: msg, IsError: true}, nil
	}

	output := stdout.String()
	if c.budget > 0 {
		if cut, truncated := truncateRunes(output, c.budget); truncated {
			output = cut + truncatedMarker
		}
	}
	slog.Debug("command tool output", "program", c.program, "output", output)

	return ToolResult{Content: output}, nil
}
