package lessongraph

import (
	"context"
)

// ToolHandler executes a tool with decoded JSON arguments and returns the text that is
// sent back to the model. A returned error is stringified into the tool result; it never
// aborts the task.
type ToolHandler func(ctx context.Context, args map[string]any) (string, error)

// ToolDefinition is the unit held by a tool registry: a name the model can call,
// a description and JSON Schema the model sees, and the handler that runs it.
//
// Names must be unique within one registry.
type ToolDefinition struct {
	// Name is the identifier the model uses in tool calls.
	Name string

	// Description is shown to the model.
	Description string

	// Parameters is the JSON Schema for the arguments object. Nil means no parameters.
	Parameters map[string]any

	// Handler runs the tool. Handlers are synchronous; a handler that performs its own
	// I/O is responsible for its own timeout.
	Handler ToolHandler
}

// Tool represents a single callable tool with typed input and output.
// The generic parameters allow for compile-time type safety when implementing tools.
//
// Responsibility design:
//   - Tool: Accept typed input, execute logic, return raw typed output
//   - toolchain.FromTool: decode JSON arguments into I, format O as text for the model
//
// Tools should focus on business logic only.
type Tool[I, O any] interface {
	// Name returns the tool's identifier used in tool calls.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// ParameterSchema returns the JSON Schema for the tool's parameters.
	// Returns nil if the tool takes no parameters.
	ParameterSchema() map[string]any

	// Call executes the tool with the given typed input.
	Call(ctx context.Context, input I) (O, error)
}

// ToolFunc is a convenience type for creating tools from functions with typed I/O.
type ToolFunc[I, O any] struct {
	name        string
	description string
	schema      map[string]any
	fn          func(ctx context.Context, input I) (O, error)
}

// NewToolFunc creates a new ToolFunc with typed input and output.
func NewToolFunc[I, O any](
	name, description string,
	schema map[string]any,
	fn func(ctx context.Context, input I) (O, error),
) *ToolFunc[I, O] {
	return &ToolFunc[I, O]{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// Name returns the tool's identifier.
func (t *ToolFunc[I, O]) Name() string {
	return t.name
}

// Description returns a human-readable description for the LLM.
func (t *ToolFunc[I, O]) Description() string {
	return t.description
}

// ParameterSchema returns the JSON Schema for the tool's parameters.
func (t *ToolFunc[I, O]) ParameterSchema() map[string]any {
	return t.schema
}

// Call executes the tool function with the given typed input.
func (t *ToolFunc[I, O]) Call(ctx context.Context, input I) (O, error) {
	return t.fn(ctx, input)
}

// ToolLogEntry records one executed tool call in the order it ran.
type ToolLogEntry struct {
	ToolName  string         `json:"tool_name" yaml:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	Result    string         `json:"result" yaml:"result"`
}
