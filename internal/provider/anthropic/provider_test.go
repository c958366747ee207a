package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider"
)

func TestSSEScanner(t *testing.T) {
	input := "event: message_start\ndata: {\"a\":1}\n\n" +
		": a comment\n" +
		"event: content_block_delta\ndata: {\"b\":2}\n\n"

	s := newSSEScanner(strings.NewReader(input))

	require.True(t, s.Next())
	assert.Equal(t, "message_start", s.Event().Event)
	assert.Equal(t, `{"a":1}`, s.Event().Data)

	require.True(t, s.Next())
	assert.Equal(t, "content_block_delta", s.Event().Event)

	assert.False(t, s.Next())
	assert.NoError(t, s.Err())
}

func TestSSEScannerMultilineData(t *testing.T) {
	input := "data: line1\ndata: line2\n\n"
	s := newSSEScanner(strings.NewReader(input))

	require.True(t, s.Next())
	assert.Equal(t, "line1\nline2", s.Event().Data)
}

func TestSSEScannerNoTrailingBlankLine(t *testing.T) {
	s := newSSEScanner(strings.NewReader("event: stop\ndata: {}"))
	require.True(t, s.Next())
	assert.Equal(t, "stop", s.Event().Event)
	assert.False(t, s.Next())
}

func TestConvertSSEEvent(t *testing.T) {
	p := New("http://example", "key")

	t.Run("text delta", func(t *testing.T) {
		evt := p.convertSSEEvent(sseEvent{
			Event: "content_block_delta",
			Data:  `{"delta":{"type":"text_delta","text":"hi"}}`,
		})
		require.NotNil(t, evt)
		assert.Equal(t, "text_delta", evt.Type)
		assert.Equal(t, "hi", evt.Text)
	})

	t.Run("input json delta surfaces as text", func(t *testing.T) {
		evt := p.convertSSEEvent(sseEvent{
			Event: "content_block_delta",
			Data:  `{"delta":{"type":"input_json_delta","partial_json":"{\"x\":"}}`,
		})
		require.NotNil(t, evt)
		assert.Equal(t, "text_delta", evt.Type)
		assert.Equal(t, `{"x":`, evt.Text)
	})

	t.Run("tool use start", func(t *testing.T) {
		evt := p.convertSSEEvent(sseEvent{
			Event: "content_block_start",
			Data:  `{"content_block":{"type":"tool_use","id":"t1","name":"read_file"}}`,
		})
		require.NotNil(t, evt)
		assert.Equal(t, "tool_use", evt.Type)
		require.NotNil(t, evt.ToolUse)
		assert.Equal(t, "t1", evt.ToolUse.ID)
		assert.Equal(t, "read_file", evt.ToolUse.Name)
	})

	t.Run("text block start ignored", func(t *testing.T) {
		evt := p.convertSSEEvent(sseEvent{
			Event: "content_block_start",
			Data:  `{"content_block":{"type":"text"}}`,
		})
		assert.Nil(t, evt)
	})

	t.Run("message stop", func(t *testing.T) {
		evt := p.convertSSEEvent(sseEvent{Event: "message_stop", Data: "{}"})
		require.NotNil(t, evt)
		assert.Equal(t, "stop", evt.Type)
	})

	t.Run("unknown event ignored", func(t *testing.T) {
		assert.Nil(t, p.convertSSEEvent(sseEvent{Event: "ping", Data: "{}"}))
	})
}

func TestConvertContentBlocksToolResult(t *testing.T) {
	blocks := convertContentBlocks([]provider.ContentBlock{
		{Type: "text", Text: "hello"},
		{Type: "tool_result", ToolUseID: "t1", Text: "output", IsError: true},
	})
	require.Len(t, blocks, 2)

	assert.Equal(t, "hello", blocks[0].Text)
	assert.Empty(t, blocks[0].Content)

	// tool_result text goes into "content", not "text".
	assert.Empty(t, blocks[1].Text)
	assert.Equal(t, "output", blocks[1].Content)
	assert.True(t, blocks[1].IsError)
}

func TestStreamEndToEnd(t *testing.T) {
	sse := "event: content_block_delta\n" +
		`data: {"delta":{"type":"text_delta","text":"hello "}}` + "\n\n" +
		"event: content_block_delta\n" +
		`data: {"delta":{"type":"text_delta","text":"world"}}` + "\n\n" +
		"event: message_stop\ndata: {}\n\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Stream)
		assert.Equal(t, "claude-sonnet-4-5", body.Model)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(sse))
	}))
	defer server.Close()

	p := New(server.URL, "test-key")
	ch, err := p.Stream(context.Background(), provider.CompletionRequest{
		Model:     "claude-sonnet-4-5",
		Messages:  []provider.Message{provider.NewUserMessage("hi")},
		MaxTokens: 100,
	})
	require.NoError(t, err)

	var text strings.Builder
	var stopped bool
	for evt := range ch {
		switch evt.Type {
		case "text_delta":
			text.WriteString(evt.Text)
		case "stop":
			stopped = true
		case "error":
			t.Fatalf("unexpected error event: %v", evt.Error)
		}
	}
	assert.Equal(t, "hello world", text.String())
	assert.True(t, stopped)
}

func TestStreamAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := New(server.URL, "test-key")
	_, err := p.Stream(context.Background(), provider.CompletionRequest{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error 503")
}
