// Package tools defines the schema-described operations the model may
// invoke to read or mutate game state, and the registry that validates
// and dispatches them.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ParamKind is the primitive JSON type of a tool parameter.
type ParamKind string

const (
	ParamString  ParamKind = "string"
	ParamNumber  ParamKind = "number"
	ParamInteger ParamKind = "integer"
	ParamBoolean ParamKind = "boolean"
)

// Param describes one tool parameter.
type Param struct {
	Name        string
	Kind        ParamKind
	Description string
	Required    bool
}

// Tool is a named unit of description, parameter schema, handler, and
// optional notifier. The handler receives the raw argument object only
// after it has passed closed-schema validation; each tool decodes it
// into its own typed record. A notifier maps (args, result) to a
// user-visible toast payload; nil means no toast.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     func(raw json.RawMessage) (any, error)
	Notifier    func(args map[string]any, result any) any

	schema *jsonschema.Schema
}

// contextText is implemented by tool results that render their own
// narrative context line instead of being JSON-encoded.
type contextText interface {
	ContextText() string
}

// parameterSchema builds the closed JSON Schema advertised to the model
// and enforced on dispatch. Unknown properties are rejected to catch
// model drift early.
func (t *Tool) parameterSchema() map[string]any {
	props := make(map[string]any, len(t.Params))
	required := make([]string, 0, len(t.Params))
	for _, p := range t.Params {
		props[p.Name] = map[string]any{
			"type":        string(p.Kind),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (t *Tool) compileSchema() error {
	raw, err := json.Marshal(t.parameterSchema())
	if err != nil {
		return fmt.Errorf("failed to marshal schema for tool %q: %w", t.Name, err)
	}
	compiled, err := jsonschema.CompileString(t.Name+".schema.json", string(raw))
	if err != nil {
		return fmt.Errorf("failed to compile schema for tool %q: %w", t.Name, err)
	}
	t.schema = compiled
	return nil
}
