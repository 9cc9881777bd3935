// Package toolloop runs the bounded tool-call loop used by the Worker node.
//
// Each round invokes the completion client with the history and the registry's tools.
// A completion without tool calls ends the loop. Otherwise every requested call is
// executed in order and answered with exactly one tool result message, so the history
// is always well-formed before the next invocation.
package toolloop

import (
	"errors"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/toolchain"
)

// DefaultMaxRounds is the round budget when the caller does not configure one.
const DefaultMaxRounds = 5

// Result is the outcome of a successful loop.
type Result struct {
	// Final is the assistant message without tool calls that ended the loop.
	Final lessongraph.Message

	// History is the caller's history plus every message the loop appended, Final
	// included.
	History []lessongraph.Message

	// ToolLog lists the executed tool calls in order.
	ToolLog []lessongraph.ToolLogEntry

	// Rounds is the number of client invocations.
	Rounds int
}

// Run executes the loop. The caller's history is never modified.
//
// Errors:
//   - *lessongraph.RemoteFailure (or any client error) is returned as-is
//   - *lessongraph.ToolLoopExceededError when maxRounds invocations all requested tools
//
// Tool failures never end the loop; they become tool result text for the model.
// A maxRounds below 1 is treated as 1.
func Run(
	execCtx *lessongraph.ExecutionContext,
	client lessongraph.CompletionClient,
	registry *toolchain.Registry,
	history []lessongraph.Message,
	maxRounds int,
) (*Result, error) {
	if client == nil {
		return nil, errors.New("toolloop: completion client is required")
	}
	if maxRounds < 1 {
		maxRounds = 1
	}

	var tools []lessongraph.ToolDefinition
	if registry != nil {
		tools = registry.Definitions()
	}

	result := &Result{History: lessongraph.CloneMessages(history)}

	for round := 1; round <= maxRounds; round++ {
		result.Rounds = round
		execCtx.Stats().IncrCounter(lessongraph.KeyToolRounds, 1)

		completion, err := client.Invoke(execCtx, result.History, tools)
		if err != nil {
			return nil, err
		}

		assistant := completion.Message()
		result.History = append(result.History, assistant)

		if completion.IsFinal() {
			result.Final = assistant
			return result, nil
		}

		for _, call := range completion.ToolCalls {
			output := executeCall(execCtx, registry, call)
			result.History = append(result.History, lessongraph.ToolResultMessage(call.ID, output))
			result.ToolLog = append(result.ToolLog, lessongraph.ToolLogEntry{
				ToolName:  call.Name,
				Arguments: call.Arguments,
				Result:    output,
			})
		}
	}

	return nil, &lessongraph.ToolLoopExceededError{MaxRounds: maxRounds}
}

func executeCall(
	execCtx *lessongraph.ExecutionContext,
	registry *toolchain.Registry,
	call lessongraph.ToolCallRequest,
) string {
	if registry == nil {
		registry = toolchain.NewRegistry()
	}
	return registry.Execute(execCtx, call).Output
}
