package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/nest-trail/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing. Each
// method runs the scripted func when one is set and records its calls.
type MockLLMAPI struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error)
	SummarizeFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []ChatCall
	SummarizeCalls []SummarizeCall

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	Messages []chat.ChatMessage
	Tools    []chat.ToolSpec
}

type SummarizeCall struct {
	Messages []chat.ChatMessage
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]ChatCall, 0),
		SummarizeCalls: make([]SummarizeCall, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Chat mocks a tool-aware completion. The default response is plain
// text so the agent loop terminates on the first iteration.
func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage, tools []chat.ToolSpec) (*chat.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, ChatCall{
		Messages: messages,
		Tools:    tools,
	})

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, tools)
	}
	return &chat.Completion{Text: "The road stretches ahead. What do you do?"}, nil
}

// Summarize mocks transcript summarization
func (m *MockLLMAPI) Summarize(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SummarizeCalls = append(m.SummarizeCalls, SummarizeCall{Messages: messages})

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, messages)
	}
	return "The journey so far, in brief.", nil
}
