package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/nest-trail/pkg/chat"
	"github.com/jwebster45206/nest-trail/pkg/toast"
)

// Registry holds the available tools and dispatches model tool calls
// against them. Dispatch never panics or aborts the turn: protocol
// errors from the model (unknown tool, bad arguments) come back as
// textual error results for the model to read.
type Registry struct {
	tools  map[string]*Tool
	order  []string
	toasts *toast.Tracker
	logger *slog.Logger
}

func NewRegistry(toasts *toast.Tracker, logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		toasts: toasts,
		logger: logger,
	}
}

// Register compiles the tool's parameter schema and adds it to the
// registry. Duplicate names are a programming error.
func (r *Registry) Register(t *Tool) error {
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	if err := t.compileSchema(); err != nil {
		return err
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Specs returns the tool schemas in registration order, for the LLM
// request payload.
func (r *Registry) Specs() []chat.ToolSpec {
	specs := make([]chat.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, chat.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.parameterSchema(),
		})
	}
	return specs
}

// Dispatch validates and executes one tool call, emitting a toast when
// the tool's notifier produces a payload. The returned string is the
// result recorded in conversation context.
func (r *Registry) Dispatch(name string, rawArgs json.RawMessage) string {
	t, ok := r.tools[name]
	if !ok {
		// Fail-soft: the model asked for a tool that does not exist.
		r.logger.Warn("Model requested unknown tool", "tool", name)
		return fmt.Sprintf("Error: tool %q is not available.", name)
	}

	if len(rawArgs) == 0 {
		rawArgs = json.RawMessage("{}")
	}

	var decoded any
	if err := json.Unmarshal(rawArgs, &decoded); err != nil {
		r.logger.Warn("Tool arguments are not valid JSON", "tool", name, "error", err)
		return fmt.Sprintf("Error: arguments for tool %q are not valid JSON.", name)
	}
	if err := t.schema.Validate(decoded); err != nil {
		r.logger.Warn("Tool arguments failed validation", "tool", name, "error", err)
		return fmt.Sprintf("Error: invalid arguments for tool %q: %v", name, err)
	}

	result, err := t.Handler(rawArgs)
	if err != nil {
		r.logger.Warn("Tool execution failed", "tool", name, "error", err)
		return fmt.Sprintf("Error: tool %q failed: %v", name, err)
	}

	if t.Notifier != nil {
		args, _ := decoded.(map[string]any)
		if payload := t.Notifier(args, result); payload != nil {
			id := r.toasts.Add(name, args, payload)
			r.logger.Debug("Toast emitted", "tool", name, "toast_id", id)
		}
	}

	r.logger.Debug("Tool executed", "tool", name)
	return renderResult(result)
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// renderResult turns a handler's return value into the string recorded
// in conversation context.
func renderResult(result any) string {
	switch v := result.(type) {
	case string:
		return v
	case contextText:
		return v.ContextText()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
