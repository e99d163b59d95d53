// Package agent runs the tool-calling conversation loop between the
// player and the language model, including history compaction for long
// games.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/inventory"
	"github.com/jwebster45206/nest-trail/pkg/tools"
)

// LLM is the upstream model surface the agent needs. Chat runs one
// completion with tool definitions attached; Summarize condenses a
// slice of conversation into prose.
type LLM interface {
	Chat(ctx context.Context, messages []chat.ChatMessage, specs []chat.ToolSpec) (*chat.Completion, error)
	Summarize(ctx context.Context, messages []chat.ChatMessage) (string, error)
}

// MaxIterations caps the number of model round-trips a single player
// turn may consume.
const MaxIterations = 10

// MaxIterationsMessage is returned verbatim when a turn hits the
// iteration cap without the model producing a normal response.
const MaxIterationsMessage = "Error: Maximum iterations reached without a normal response."

// toolResultPrefix marks the synthetic user messages that carry tool
// results back into context. Messages with this prefix do not count as
// genuine player turns.
const toolResultPrefix = "Tool "

// Compaction keeps the most recent genuine player turns verbatim and
// folds everything older into a running summary. It triggers once more
// than compactThreshold genuine turns are in history, and keeps the
// tail starting at the keepFromTurn-th genuine turn.
const (
	compactThreshold = 6
	keepFromTurn     = 4
)

// Agent owns one game's conversation: the system instructions, the
// message history, the running summary, and the tool registry used to
// execute model tool calls. Safe for concurrent use; turns serialize.
type Agent struct {
	mu       sync.Mutex
	llm      LLM
	registry *tools.Registry
	logger   *slog.Logger

	instructions string
	summary      string
	history      []chat.ChatMessage
}

func New(llm LLM, registry *tools.Registry, instructions string, logger *slog.Logger) *Agent {
	return &Agent{
		llm:          llm,
		registry:     registry,
		logger:       logger,
		instructions: instructions,
	}
}

// SendTurn runs one full player turn: the message enters history, the
// model is called up to MaxIterations times with tool results fed back
// in between, and the model's final text is returned. An upstream
// failure returns an error and leaves no assistant message in history;
// the player's message and any executed tool results remain, since the
// tools have already run.
func (a *Agent) SendTurn(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: message is required", inventory.ErrValidation)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.maybeCompact(ctx)

	a.history = append(a.history, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: message,
	})

	for i := 0; i < MaxIterations; i++ {
		completion, err := a.llm.Chat(ctx, a.buildMessages(), a.registry.Specs())
		if err != nil {
			return "", fmt.Errorf("model request failed: %w", err)
		}

		if len(completion.ToolCalls) == 0 {
			a.history = append(a.history, chat.ChatMessage{
				Role:    chat.ChatRoleAgent,
				Content: completion.Text,
			})
			return completion.Text, nil
		}

		for _, call := range completion.ToolCalls {
			args := string(call.Arguments)
			if args == "" {
				args = "{}"
			}
			result := a.registry.Dispatch(call.Name, call.Arguments)
			encoded, err := json.Marshal(result)
			if err != nil {
				encoded = []byte(`""`)
			}
			a.history = append(a.history, chat.ChatMessage{
				Role:    chat.ChatRoleUser,
				Content: fmt.Sprintf("%s%s was called with arguments %s and returned: %s", toolResultPrefix, call.Name, args, encoded),
			})
		}
	}

	a.logger.Warn("Turn hit the iteration cap", "max_iterations", MaxIterations)
	a.history = append(a.history, chat.ChatMessage{
		Role:    chat.ChatRoleAgent,
		Content: MaxIterationsMessage,
	})
	return MaxIterationsMessage, nil
}

// Reset discards the conversation and the running summary. The system
// instructions survive.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
	a.summary = ""
}

// History returns the full message list as the model would see it on
// the next request, system message included.
func (a *Agent) History() []chat.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buildMessages()
}

// Summary returns the running compaction summary, empty until the first
// compaction fires.
func (a *Agent) Summary() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

// buildMessages assembles the request payload: one system message
// (instructions plus the running summary, if any) followed by the
// retained history. Caller holds the lock.
func (a *Agent) buildMessages() []chat.ChatMessage {
	content := a.instructions
	if a.summary != "" {
		content += "\n\nSummary of the story so far:\n" + a.summary
	}
	messages := make([]chat.ChatMessage, 0, len(a.history)+1)
	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: content,
	})
	return append(messages, a.history...)
}

// maybeCompact folds the oldest genuine player turns into the running
// summary once history grows past the threshold. Best effort: if the
// summarization call fails the history is left intact and the next turn
// retries. Caller holds the lock.
func (a *Agent) maybeCompact(ctx context.Context) {
	if countGenuineTurns(a.history) <= compactThreshold {
		return
	}

	cut := genuineTurnIndex(a.history, keepFromTurn)
	if cut <= 0 {
		return
	}
	head := a.history[:cut]

	summary, err := a.llm.Summarize(ctx, head)
	if err != nil {
		a.logger.Warn("History compaction failed, keeping full history", "error", err)
		return
	}

	if a.summary != "" {
		a.summary += "\n\n" + summary
	} else {
		a.summary = summary
	}
	a.history = append([]chat.ChatMessage(nil), a.history[cut:]...)
	a.logger.Debug("Compacted conversation history",
		"summarized_messages", len(head),
		"retained_messages", len(a.history))
}

// countGenuineTurns counts user messages that came from the player,
// excluding synthetic tool-result messages.
func countGenuineTurns(history []chat.ChatMessage) int {
	n := 0
	for _, m := range history {
		if isGenuineTurn(m) {
			n++
		}
	}
	return n
}

// genuineTurnIndex returns the history index of the nth genuine player
// turn (1-based), or -1 if there are fewer than n.
func genuineTurnIndex(history []chat.ChatMessage, n int) int {
	seen := 0
	for i, m := range history {
		if isGenuineTurn(m) {
			seen++
			if seen == n {
				return i
			}
		}
	}
	return -1
}

func isGenuineTurn(m chat.ChatMessage) bool {
	return m.Role == chat.ChatRoleUser && !strings.HasPrefix(m.Content, toolResultPrefix)
}
