package lessongraph

import (
	"encoding/json"
	"fmt"
)

// Role identifies who produced a Message.
type Role string

const (
	// RoleSystem marks instructions. The model never produces system messages.
	RoleSystem Role = "system"

	// RoleUser marks input from the human or calling code.
	RoleUser Role = "user"

	// RoleAssistant marks model output.
	RoleAssistant Role = "assistant"

	// RoleTool marks the result of executing one ToolCallRequest.
	RoleTool Role = "tool"
)

// ToolCallRequest is a structured request from the model to execute a registered tool.
// It is produced only by model adapters.
type ToolCallRequest struct {
	// ID correlates the request with its ToolResultMessage. Unique within one completion.
	ID string `json:"id" yaml:"id"`

	// Name is the tool name the model asked for. It may not exist in the registry.
	Name string `json:"name" yaml:"name"`

	// Arguments are the decoded JSON arguments.
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`

	// RawArguments holds the provider's argument text when it was not a JSON object,
	// for example when the model's output was truncated. Arguments is empty then.
	RawArguments string `json:"raw_arguments,omitempty" yaml:"raw_arguments,omitempty"`
}

// ArgumentsError reports why RawArguments could not be decoded. It is nil for a
// well-formed call.
func (c ToolCallRequest) ArgumentsError() error {
	if c.RawArguments == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(c.RawArguments), &args); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArguments, c.Name, err)
	}
	return nil
}

// Message is one turn in a conversation.
//
// Which fields are meaningful depends on Role:
//   - RoleSystem, RoleUser: Text
//   - RoleAssistant: Text and ToolCalls (empty for a final answer)
//   - RoleTool: Text and ToolCallID
//
// Every ToolCallRequest emitted in an assistant message must be answered by exactly one
// tool message with the matching ToolCallID before the next model invocation.
type Message struct {
	Role       Role              `json:"role" yaml:"role"`
	Text       string            `json:"text,omitempty" yaml:"text,omitempty"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty" yaml:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty" yaml:"tool_call_id,omitempty"`
}

// SystemMessage creates a system instruction message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text}
}

// UserMessage creates a user input message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage creates a model output message. Pass nil calls for a final answer.
func AssistantMessage(text string, calls []ToolCallRequest) Message {
	return Message{Role: RoleAssistant, Text: text, ToolCalls: calls}
}

// ToolResultMessage creates the result message for the tool call with the given id.
func ToolResultMessage(toolCallID, text string) Message {
	return Message{Role: RoleTool, Text: text, ToolCallID: toolCallID}
}

// HasToolCalls reports whether the message requests any tool execution.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// CloneMessages returns a copy of msgs that does not share its backing array. Tool calls
// and their top-level argument maps are copied as well; nested argument values are shared.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		if out[i].ToolCalls == nil {
			continue
		}
		calls := make([]ToolCallRequest, len(out[i].ToolCalls))
		for j, call := range out[i].ToolCalls {
			calls[j] = call
			if call.Arguments != nil {
				calls[j].Arguments = make(map[string]any, len(call.Arguments))
				for k, v := range call.Arguments {
					calls[j].Arguments[k] = v
				}
			}
		}
		out[i].ToolCalls = calls
	}
	return out
}
