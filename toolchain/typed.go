package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rickchristie/lessongraph"
	"gopkg.in/yaml.v3"
)

// FromTool adapts a typed lessongraph.Tool into a ToolDefinition.
//
// The handler decodes the model's JSON arguments into I (a JSON round trip, so
// struct tags apply) and formats O for the model:
//   - string and fmt.Stringer outputs are used as-is
//   - anything else is marshaled as YAML, which reads well in prompts
func FromTool[I, O any](tool lessongraph.Tool[I, O]) lessongraph.ToolDefinition {
	return lessongraph.ToolDefinition{
		Name:        tool.Name(),
		Description: tool.Description(),
		Parameters:  tool.ParameterSchema(),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			input, err := DecodeArgs[I](args)
			if err != nil {
				return "", err
			}
			output, err := tool.Call(ctx, input)
			if err != nil {
				return "", err
			}
			return FormatOutput(output)
		},
	}
}

// DecodeArgs converts raw arguments into the typed input I.
func DecodeArgs[I any](args map[string]any) (I, error) {
	var input I
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return input, fmt.Errorf("failed to marshal args: %w", err)
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("failed to unmarshal args into input type: %w", err)
	}
	return input, nil
}

// FormatOutput renders a tool output as text for the model.
func FormatOutput(output any) (string, error) {
	switch v := output.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	data, err := yaml.Marshal(output)
	if err != nil {
		return "", fmt.Errorf("failed to format output: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
