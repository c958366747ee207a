package output

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter outputs RunResult as human-readable Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders the RunResult as Markdown.
func (f *MarkdownFormatter) Format(result *RunResult) ([]byte, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s run %s\n\n", result.Workflow, result.RunID))
	b.WriteString(fmt.Sprintf("**Target**: %s\n\n", result.EntryURL))

	if !result.Success {
		b.WriteString("## Error\n\n")
		b.WriteString(result.Error)
		b.WriteString("\n")
		return []byte(b.String()), nil
	}

	if result.Summary != "" {
		b.WriteString(result.Summary)
		b.WriteString("\n")
	}

	duration := time.Duration(result.DurationMs) * time.Millisecond
	b.WriteString(fmt.Sprintf("\n---\n*Completed in %s*\n",
		duration.Round(100*time.Millisecond)))

	return []byte(b.String()), nil
}
