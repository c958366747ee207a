package tools

import (
	"context"
	"encoding/json"
)

// Tool defines the interface for a tool that can be invoked by the
// reasoning model during a workflow stage.
type Tool interface {
	Name() string
	Description() string
	InputSchema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (ToolResult, error)
}

// ToolResult represents the result of executing a tool. Failures are
// carried as text in Content with IsError set, so the model can read
// the error and correct its next call; Execute returns a Go error only
// for faults that should abort the surrounding stage.
type ToolResult struct {
	Content string
	IsError bool
}
