package agent

import (
	"github.com/Jatin-Roopchandani/agent-service-code-review/internal/provider"
)

// Conversation holds the message history for a single agent run.
type Conversation struct {
	systemPrompt string
	messages     []provider.Message
}

// NewConversation creates an empty conversation with the given system prompt.
func NewConversation(systemPrompt string) *Conversation {
	return &Conversation{systemPrompt: systemPrompt}
}

// SystemPrompt returns the system prompt for this conversation.
func (c *Conversation) SystemPrompt() string {
	return c.systemPrompt
}

// Messages returns the accumulated message history.
func (c *Conversation) Messages() []provider.Message {
	return c.messages
}

// AddUser appends a user message with a single text block.
func (c *Conversation) AddUser(text string) {
	c.messages = append(c.messages, provider.NewUserMessage(text))
}

// AddAssistant appends an assistant message with the given content blocks.
func (c *Conversation) AddAssistant(blocks []provider.ContentBlock) {
	c.messages = append(c.messages, provider.Message{
		Role:    "assistant",
		Content: blocks,
	})
}

// AddToolResult appends a tool result message for the given tool use ID.
func (c *Conversation) AddToolResult(toolUseID, content string, isError bool) {
	c.messages = append(c.messages, provider.NewToolResultMessage(toolUseID, content, isError))
}
