package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider"
)

func init() {
	provider.RegisterProvider("openai", func(baseURL, apiKey string, extraHeaders map[string]string) provider.LLMProvider {
		return New(baseURL, apiKey, extraHeaders)
	})
}

// Provider implements the LLMProvider interface for OpenAI-compatible
// chat completion APIs. The shared content-block model is flattened into
// the OpenAI message shapes: text becomes a plain string, tool results
// become role "tool" messages, and assistant tool use becomes tool_calls.
type Provider struct {
	baseURL      string
	apiKey       string
	extraHeaders map[string]string
	client       *http.Client
}

// New creates a provider for the OpenAI-compatible endpoint at baseURL.
// extraHeaders are attached to every request.
func New(baseURL, apiKey string, extraHeaders map[string]string) *Provider {
	return &Provider{
		baseURL:      baseURL,
		apiKey:       apiKey,
		extraHeaders: extraHeaders,
		client:       &http.Client{},
	}
}

// apiRequest is the request body sent to /chat/completions.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	Tools       []apiTool    `json:"tools,omitempty"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature *float64     `json:"temperature,omitempty"`
	Stream      bool         `json:"stream"`
}

type apiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content,omitempty"`
	ToolCalls  []apiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type apiTool struct {
	Type     string      `json:"type"`
	Function apiFunction `json:"function"`
}

type apiFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type apiToolCall struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Function apiCallFunc `json:"function"`
}

type apiCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// streamChunk is the subset of a chat completion chunk this client reads.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
	} `json:"choices"`
}

// Stream sends a completion request and returns a channel of StreamEvents
// parsed from the chunked SSE response.
func (p *Provider) Stream(ctx context.Context, req provider.CompletionRequest) (<-chan provider.StreamEvent, error) {
	body, err := p.buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	for k, v := range p.extraHeaders {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	ch := make(chan provider.StreamEvent)
	go p.processStream(ctx, resp.Body, ch)

	return ch, nil
}

func (p *Provider) buildRequestBody(req provider.CompletionRequest) ([]byte, error) {
	apiReq := apiRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      true,
	}

	// OpenAI has no top-level system field; the prompt leads the messages.
	if req.System != "" {
		apiReq.Messages = append(apiReq.Messages, apiMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, p.convertMessage(msg))
	}

	for _, tool := range req.Tools {
		apiReq.Tools = append(apiReq.Tools, apiTool{
			Type: "function",
			Function: apiFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}

	return json.Marshal(apiReq)
}

func (p *Provider) convertMessage(msg provider.Message) apiMessage {
	if msg.Role == "assistant" {
		return p.convertAssistantMessage(msg)
	}
	return p.convertUserMessage(msg)
}

func (p *Provider) convertAssistantMessage(msg provider.Message) apiMessage {
	out := apiMessage{Role: "assistant"}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			out.Content += block.Text
		case "tool_use":
			out.ToolCalls = append(out.ToolCalls, apiToolCall{
				ID:   block.ID,
				Type: "function",
				Function: apiCallFunc{
					Name:      block.Name,
					Arguments: string(block.Input),
				},
			})
		}
	}
	return out
}

// convertUserMessage maps a user-side message. A tool result becomes a
// role "tool" message bound to its call ID; anything else is the
// concatenated text.
func (p *Provider) convertUserMessage(msg provider.Message) apiMessage {
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "tool_result" {
			return apiMessage{Role: "tool", Content: block.Text, ToolCallID: block.ToolUseID}
		}
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return apiMessage{Role: msg.Role, Content: text.String()}
}

// processStream reads "data:" lines from the response body and sends the
// converted events. It closes both the body and the channel when done.
func (p *Provider) processStream(ctx context.Context, body io.ReadCloser, ch chan<- provider.StreamEvent) {
	defer close(ch)
	defer body.Close()

	send := func(evt provider.StreamEvent) bool {
		select {
		case ch <- evt:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			send(provider.StreamEvent{Type: "stop"})
			return
		}
		for _, evt := range convertChunk([]byte(data)) {
			if !send(evt) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		send(provider.StreamEvent{Type: "error", Error: err})
	}
}

// convertChunk parses one stream chunk into zero or more events. A tool
// call opens with a tool_use event carrying its ID and name; the argument
// fragments that follow surface as text_delta so the agent layer can
// accumulate them, the same way Anthropic input deltas are handled.
func convertChunk(data []byte) []provider.StreamEvent {
	var chunk streamChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return []provider.StreamEvent{{Type: "error", Error: fmt.Errorf("parsing chunk: %w", err)}}
	}
	if len(chunk.Choices) == 0 {
		return nil
	}
	delta := chunk.Choices[0].Delta

	var events []provider.StreamEvent
	if delta.Content != "" {
		events = append(events, provider.StreamEvent{Type: "text_delta", Text: delta.Content})
	}
	for _, tc := range delta.ToolCalls {
		if tc.ID != "" {
			events = append(events, provider.StreamEvent{
				Type:    "tool_use",
				ToolUse: &provider.ToolUseBlock{ID: tc.ID, Name: tc.Function.Name},
			})
		}
		if tc.Function.Arguments != "" {
			events = append(events, provider.StreamEvent{Type: "text_delta", Text: tc.Function.Arguments})
		}
	}
	return events
}
