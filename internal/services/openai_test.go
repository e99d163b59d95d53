package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/prompts"
)

func newOpenAITestService(t *testing.T, handler http.HandlerFunc) (*OpenAIService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc := NewOpenAIService("test-key", "gpt-test", "gpt-test-mini", slog.Default())
	svc.baseURL = server.URL
	return svc, server
}

func TestOpenAIService_Chat_Text(t *testing.T) {
	var gotReq openAIChatRequest
	svc, _ := newOpenAITestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "You arrive in Gilroy."}},
			},
		})
	})

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "You are the narrator."},
		{Role: chat.ChatRoleUser, Content: "Drive to Gilroy."},
	}
	tools := []chat.ToolSpec{
		{Name: "updateStats", Description: "Advance the trip", Parameters: map[string]any{"type": "object"}},
	}

	completion, err := svc.Chat(context.Background(), messages, tools)
	require.NoError(t, err)
	assert.Equal(t, "You arrive in Gilroy.", completion.Text)
	assert.Empty(t, completion.ToolCalls)

	assert.Equal(t, "gpt-test", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	require.Len(t, gotReq.Tools, 1)
	assert.Equal(t, "function", gotReq.Tools[0].Type)
	assert.Equal(t, "updateStats", gotReq.Tools[0].Function.Name)
}

func TestOpenAIService_Chat_ToolCalls(t *testing.T) {
	svc, _ := newOpenAITestService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{
						{
							"id":   "call_abc",
							"type": "function",
							"function": map[string]any{
								"name":      "addItem",
								"arguments": `{"name":"Coffee","description":"Hot","count":1}`,
							},
						},
					},
				}},
			},
		})
	})

	completion, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Buy a coffee."},
	}, nil)
	require.NoError(t, err)

	require.Len(t, completion.ToolCalls, 1)
	call := completion.ToolCalls[0]
	assert.Equal(t, "call_abc", call.ID)
	assert.Equal(t, "addItem", call.Name)
	assert.JSONEq(t, `{"name":"Coffee","description":"Hot","count":1}`, string(call.Arguments))
}

func TestOpenAIService_Chat_APIError(t *testing.T) {
	svc, _ := newOpenAITestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hello"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIService_Chat_NoChoices(t *testing.T) {
	svc, _ := newOpenAITestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hello"},
	}, nil)
	assert.Error(t, err)
}

func TestOpenAIService_Summarize(t *testing.T) {
	var gotReq openAIChatRequest
	svc, _ := newOpenAITestService(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "They reached Salinas."}},
			},
		})
	})

	summary, err := svc.Summarize(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Drive to Salinas."},
		{Role: chat.ChatRoleAgent, Content: "You arrive in Salinas."},
	})
	require.NoError(t, err)
	assert.Equal(t, "They reached Salinas.", summary)

	// Summarization uses the secondary model, prepends the summarizer
	// instructions, and sends no tools.
	assert.Equal(t, "gpt-test-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 3)
	assert.Equal(t, chat.ChatRoleSystem, gotReq.Messages[0].Role)
	assert.Equal(t, prompts.Summarizer, gotReq.Messages[0].Content)
	assert.Empty(t, gotReq.Tools)
}
