// Package chat defines the message types shared by the HTTP layer, the
// agent loop, and the LLM clients.
package chat

import (
	"encoding/json"
	"fmt"
)

// ChatRequest represents a chat message request made by the player
// to the nest-trail api.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse represents a chat message response returned by the
// nest-trail api.
type ChatResponse struct {
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Game master
	ChatRoleSystem = "system"    // Instructions
)

// ChatMessage is a single role-tagged message in the conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ToolCall is a function invocation requested by the model. Arguments
// are kept raw; the tool registry validates and decodes them.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Completion is one model response: either final text, or one or more
// tool calls to execute before asking again.
type Completion struct {
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolSpec is the schema-described shape of a tool as advertised to the
// model. Parameters holds a JSON Schema object.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}
