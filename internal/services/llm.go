package services

import (
	"context"

	"github.com/jwebster45206/nest-trail/pkg/chat"
)

// LLMService is the provider-agnostic model surface: one tool-aware
// chat completion and one plain summarization call. Implementations
// exist for OpenAI, Anthropic, and a scriptable mock.
type LLMService interface {
	// InitModel prepares the named model for use. A no-op for hosted
	// providers.
	InitModel(ctx context.Context, modelName string) error

	// Chat runs one completion over the full message list with the tool
	// definitions attached. The returned completion carries either
	// final text or one or more tool calls.
	Chat(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error)

	// Summarize condenses a conversation slice into prose, using the
	// secondary model when one is configured.
	Summarize(ctx context.Context, messages []chat.ChatMessage) (string, error)
}
