package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/config"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider"
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/tools"
)

// Agent runs a single non-interactive task to completion: it sends an
// instruction to the LLM, executes any tools the model requests, feeds the
// results back, and returns the model's final text once it stops calling
// tools.
type Agent struct {
	provider  provider.LLMProvider
	tools     *tools.Registry
	limiter   *rate.Limiter
	model     string
	maxTurns  int
	maxTokens int
	logger    *slog.Logger
}

// Option is a functional option for configuring an Agent.
type Option func(*Agent)

// WithLimiter shares a rate limiter across agents so concurrent runs stay
// within the provider's request budget.
func WithLimiter(l *rate.Limiter) Option {
	return func(a *Agent) {
		a.limiter = l
	}
}

// WithLogger attaches a structured logger to the agent.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New creates a new Agent with the given provider, tool registry, and
// configuration. The registry may be empty, in which case the model
// responds from its own reasoning without tool access.
func New(p provider.LLMProvider, t *tools.Registry, cfg *config.Config, opts ...Option) *Agent {
	a := &Agent{
		provider:  p,
		tools:     t,
		model:     cfg.Provider.Model,
		maxTurns:  cfg.Agent.MaxTurns,
		maxTokens: cfg.Agent.MaxTokens,
		logger:    slog.Default(),
	}
	if a.maxTokens <= 0 {
		a.maxTokens = 8192
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the instruction against the model and returns the final
// assistant text. Tool calls requested by the model are executed through
// the registry; tool failures are reported back to the model as error
// results rather than aborting the run.
func (a *Agent) Run(ctx context.Context, systemPrompt, instruction string) (string, error) {
	conv := NewConversation(systemPrompt)
	conv.AddUser(instruction)

	for turn := 0; turn < a.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("waiting for request slot: %w", err)
			}
		}

		req := provider.CompletionRequest{
			Model:     a.model,
			System:    conv.SystemPrompt(),
			Messages:  conv.Messages(),
			Tools:     a.tools.All(),
			MaxTokens: a.maxTokens,
		}

		stream, err := a.provider.Stream(ctx, req)
		if err != nil {
			return "", fmt.Errorf("provider stream: %w", err)
		}

		blocks, pendingTools, text, err := a.collectResponse(ctx, stream)
		if err != nil {
			return "", err
		}

		if len(blocks) > 0 {
			conv.AddAssistant(blocks)
		}

		if len(pendingTools) == 0 {
			return text, nil
		}

		// The model asked for tools; its interim text is discarded and
		// only the post-tool response counts as the answer.
		for _, tc := range pendingTools {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			a.executeTool(ctx, conv, tc)
		}
	}

	return "", fmt.Errorf("max turns (%d) exceeded", a.maxTurns)
}

// collectResponse drains a provider stream, accumulating text and tool use
// blocks. Tool input arrives as JSON fragments interleaved with the tool_use
// event that opens the block.
func (a *Agent) collectResponse(ctx context.Context, stream <-chan provider.StreamEvent) ([]provider.ContentBlock, []provider.ToolUseBlock, string, error) {
	var blocks []provider.ContentBlock
	var pendingTools []provider.ToolUseBlock
	var textBuf, fullText strings.Builder
	var currentTool *provider.ToolUseBlock
	var toolInputBuf strings.Builder

	finalizeTool := func() {
		if currentTool == nil {
			return
		}
		input := toolInputBuf.String()
		if input == "" {
			input = "{}"
		}
		currentTool.Input = json.RawMessage(input)
		pendingTools = append(pendingTools, *currentTool)
		blocks = append(blocks, provider.ContentBlock{
			Type:  "tool_use",
			ID:    currentTool.ID,
			Name:  currentTool.Name,
			Input: currentTool.Input,
		})
		currentTool = nil
		toolInputBuf.Reset()
	}

	finalizeText := func() {
		if textBuf.Len() == 0 {
			return
		}
		blocks = append(blocks, provider.ContentBlock{
			Type: "text",
			Text: textBuf.String(),
		})
		fullText.WriteString(textBuf.String())
		textBuf.Reset()
	}

	for event := range stream {
		switch event.Type {
		case "text_delta":
			if currentTool != nil {
				toolInputBuf.WriteString(event.Text)
			} else {
				textBuf.WriteString(event.Text)
			}

		case "tool_use":
			finalizeText()
			finalizeTool()
			currentTool = &provider.ToolUseBlock{
				ID:   event.ToolUse.ID,
				Name: event.ToolUse.Name,
			}

		case "error":
			return nil, nil, "", fmt.Errorf("stream error: %w", event.Error)

		case "stop":
			// Handled after the loop when the channel closes.
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, "", err
	}

	finalizeTool()
	finalizeText()

	return blocks, pendingTools, fullText.String(), nil
}

// executeTool runs a single requested tool and records its result in the
// conversation. Unknown tools and execution failures become error results
// visible to the model.
func (a *Agent) executeTool(ctx context.Context, conv *Conversation, tc provider.ToolUseBlock) {
	a.logger.Info("tool call", "tool", tc.Name, "id", tc.ID)

	tool, found := a.tools.Get(tc.Name)
	if !found {
		conv.AddToolResult(tc.ID, fmt.Sprintf("unknown tool: %s", tc.Name), true)
		return
	}

	result, err := tool.Execute(ctx, tc.Input)
	if err != nil {
		a.logger.Error("tool execution failed", "tool", tc.Name, "error", err)
		conv.AddToolResult(tc.ID, fmt.Sprintf("tool execution error: %s", err), true)
		return
	}

	if result.IsError {
		a.logger.Debug("tool returned error result", "tool", tc.Name)
	}
	conv.AddToolResult(tc.ID, result.Content, result.IsError)
}
