package lessongraph

import (
	"context"
)

// -----------------------------------------------------------------------------
// Executor Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks allow observing and intercepting execution at various points. To use hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to executor.WithHooks
//
// Example:
//
//	type LoggingHook struct {
//	    logger *log.Logger
//	}
//
//	func (h *LoggingHook) OnBeforeNode(ctx context.Context, execCtx *ExecutionContext, e BeforeNodeEvent) {
//	    h.logger.Printf("step %d: %s", e.Step, e.Node)
//	}
//
//	func (h *LoggingHook) OnAfterModelCall(ctx context.Context, execCtx *ExecutionContext, e AfterModelCallEvent) {
//	    h.logger.Printf("model %s attempt %d took %v", e.Model, e.Attempt, e.Duration)
//	}
//
//	// Register and use
//	registry := hooks.NewRegistry()
//	registry.Register(&LoggingHook{logger: log.Default()})
//	exec := executor.New(agent, executor.DefaultConfig()).WithHooks(registry)
//
// # Hook Execution Order
//
// Hooks are called in registration order. For paired hooks (Before/After), the After
// hook is always called if the Before hook was called, even on error.
//
// # Error Handling
//
// Hooks should NOT return errors. If a hook panics:
//   - Before hooks: Execution stops, panic propagates
//   - After hooks: Panic propagates after cleanup
//
// Implement proper error recovery if you need to handle errors gracefully.
//
// # Available Hooks
//
//   - Execution lifecycle: [BeforeExecutionHook], [AfterExecutionHook]
//   - Node lifecycle: [BeforeNodeHook], [AfterNodeHook]
//   - Model calls: [BeforeModelCallHook], [AfterModelCallHook]
//   - Tool calls: [BeforeToolCallHook], [AfterToolCallHook]
//   - Error handling: [ErrorHook]
// -----------------------------------------------------------------------------

// BeforeExecutionHook is implemented by hooks that want to be notified before execution starts.
//
// This hook is called once at the very beginning of Execute(), before any node runs.
// Use it for:
//   - Initializing per-execution resources (timers, spans)
//   - Logging execution start with task information
//   - Setting up monitoring or tracing contexts
//
// The event contains the task id and the user input.
//
// Example:
//
//	func (h *MyHook) OnBeforeExecution(
//	    ctx context.Context,
//	    execCtx *lessongraph.ExecutionContext,
//	    event lessongraph.BeforeExecutionEvent,
//	) {
//	    h.startTime = time.Now()
//	    h.logger.Printf("starting task %s", event.TaskID)
//	}
type BeforeExecutionHook interface {
	// OnBeforeExecution is called once before the first node runs.
	OnBeforeExecution(ctx context.Context, execCtx *ExecutionContext, event BeforeExecutionEvent)
}

// AfterExecutionHook is implemented by hooks that want to be notified after execution terminates.
//
// This hook is always called if BeforeExecution was called, even when execution ends with an
// error. Use it for:
//   - Cleaning up per-execution resources
//   - Recording final metrics (duration, token usage)
//   - Closing monitoring spans
//
// The event contains the termination reason and the state's error, if any.
//
// Example:
//
//	func (h *MyHook) OnAfterExecution(
//	    ctx context.Context,
//	    execCtx *lessongraph.ExecutionContext,
//	    event lessongraph.AfterExecutionEvent,
//	) {
//	    stats := execCtx.Stats()
//	    h.metrics.RecordExecution(event.Duration, stats.GetCounter(lessongraph.KeyInputTokens))
//	}
type AfterExecutionHook interface {
	// OnAfterExecution is called once after the driver stops (successfully or with error).
	// This is always called if OnBeforeExecution was called, even on error.
	OnAfterExecution(ctx context.Context, execCtx *ExecutionContext, event AfterExecutionEvent)
}

// BeforeNodeHook is implemented by hooks that want to be notified before each node runs.
//
// If the hook panics, execution will stop. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type BeforeNodeHook interface {
	// OnBeforeNode is called after routing, before the node's Run.
	OnBeforeNode(ctx context.Context, execCtx *ExecutionContext, event BeforeNodeEvent)
}

// AfterNodeHook is implemented by hooks that want to be notified after each node runs.
//
// If the hook panics, execution will stop. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type AfterNodeHook interface {
	// OnAfterNode is called after the node's Run returns.
	OnAfterNode(ctx context.Context, execCtx *ExecutionContext, event AfterNodeEvent)
}

// ErrorHook is implemented by hooks that want to be notified of errors.
//
// If the hook panics, the panic will propagate. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type ErrorHook interface {
	// OnError is called when an error occurs during execution, including failures
	// that are contained (tool errors, malformed critic output).
	OnError(ctx context.Context, execCtx *ExecutionContext, event ErrorEvent)
}

// -----------------------------------------------------------------------------
// Model Call Hook Interfaces
// -----------------------------------------------------------------------------

// BeforeModelCallHook is implemented by hooks that want to be notified before model calls.
//
// If the hook panics, the panic will propagate. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type BeforeModelCallHook interface {
	// OnBeforeModelCall is called before each model attempt, so once per retry.
	OnBeforeModelCall(ctx context.Context, execCtx *ExecutionContext, event BeforeModelCallEvent)
}

// AfterModelCallHook is implemented by hooks that want to be notified after model calls.
//
// If the hook panics, the panic will propagate. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type AfterModelCallHook interface {
	// OnAfterModelCall is called after each model attempt completes.
	OnAfterModelCall(ctx context.Context, execCtx *ExecutionContext, event AfterModelCallEvent)
}

// -----------------------------------------------------------------------------
// Tool Call Hook Interfaces
// -----------------------------------------------------------------------------

// BeforeToolCallHook is implemented by hooks that want to be notified before tool calls.
//
// If the hook panics, execution will stop. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type BeforeToolCallHook interface {
	// OnBeforeToolCall is called before each tool execution.
	// The hook can modify event.Args to change the input.
	OnBeforeToolCall(ctx context.Context, execCtx *ExecutionContext, event *BeforeToolCallEvent)
}

// AfterToolCallHook is implemented by hooks that want to be notified after tool calls.
//
// If the hook panics, the panic will propagate. Hooks should implement proper error recovery
// if they need to handle errors gracefully.
type AfterToolCallHook interface {
	// OnAfterToolCall is called after each tool execution completes.
	OnAfterToolCall(ctx context.Context, execCtx *ExecutionContext, event AfterToolCallEvent)
}

// -----------------------------------------------------------------------------
// Hook Firer
// -----------------------------------------------------------------------------

// HookFirer dispatches the hooks that fire below the executor: inside completion
// clients, the tool registry and nodes. hooks.Registry implements it. The executor
// installs its registry on the ExecutionContext so these components need no direct
// reference to it.
type HookFirer interface {
	FireBeforeModelCall(ctx context.Context, execCtx *ExecutionContext, event BeforeModelCallEvent)
	FireAfterModelCall(ctx context.Context, execCtx *ExecutionContext, event AfterModelCallEvent)
	FireBeforeToolCall(ctx context.Context, execCtx *ExecutionContext, event *BeforeToolCallEvent)
	FireAfterToolCall(ctx context.Context, execCtx *ExecutionContext, event AfterToolCallEvent)
	FireError(ctx context.Context, execCtx *ExecutionContext, event ErrorEvent)
}
