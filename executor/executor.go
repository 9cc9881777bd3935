package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/hooks"
)

// DefaultMaxSteps is the step ceiling when Config.MaxSteps is not set. The normal path
// with two retries takes 7 steps.
const DefaultMaxSteps = 10

// User-facing answers written by the driver itself.
const (
	StepLimitAnswer   = "The task took too many steps and was stopped. Please try again with a simpler request."
	CanceledAnswer    = "The task was canceled before it finished."
	UnreachableAnswer = "The task ended in an unexpected state. Please try again."
	limitAnswerFormat = "The task was stopped because it exceeded a usage limit (%s)."
)

// Config holds configuration options for the Executor.
type Config struct {
	// MaxSteps is the step ceiling. Zero or negative means DefaultMaxSteps.
	MaxSteps int

	// MaxRetries is copied into every new AgentState. Negative means 0.
	MaxRetries int

	// Limits are installed on every new ExecutionContext. Nil means
	// lessongraph.DefaultLimits(); use an empty slice to disable limits.
	Limits []lessongraph.Limit
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSteps:   DefaultMaxSteps,
		MaxRetries: lessongraph.DefaultMaxRetries,
		Limits:     lessongraph.DefaultLimits(),
	}
}

func (c Config) maxSteps() int {
	if c.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return c.MaxSteps
}

// Executor drives a lessongraph.Graph: it asks the router for the next node, runs it,
// and repeats until the router returns End, the Error node has run, the task is
// canceled, or the step ceiling is reached.
//
// The Executor is responsible for:
//   - Creating the AgentState and ExecutionContext for each task (see Run)
//   - Invoking lifecycle hooks at appropriate points
//   - Handling context cancellation and limit exceeded signals
//   - Guaranteeing a non-empty FinalAnswer and Finished=true when it stops
//
// An Executor holds no per-task data and may run many tasks concurrently.
type Executor struct {
	graph  lessongraph.Graph
	config Config
	hooks  *hooks.Registry
}

// New creates a new Executor for graph with the given configuration.
func New(graph lessongraph.Graph, config Config) *Executor {
	return &Executor{
		graph:  graph,
		config: config,
		hooks:  hooks.NewRegistry(),
	}
}

// WithHooks replaces the executor's hook registry with the provided one.
// Use this when you need to share a registry across multiple executors.
// Returns the executor for chaining.
//
// Example:
//
//	// Share hooks across multiple executors
//	sharedRegistry := hooks.NewRegistry()
//	sharedRegistry.Register(&MetricsHook{})
//
//	exec1 := executor.New(teaching, config).WithHooks(sharedRegistry)
//	exec2 := executor.New(generic, config).WithHooks(sharedRegistry)
func (e *Executor) WithHooks(h *hooks.Registry) *Executor {
	e.hooks = h
	return e
}

// RegisterHook adds a hook to the executor's existing hook registry.
// The hook can implement any combination of hook interfaces
// (BeforeExecutionHook, AfterToolCallHook, etc.).
// Returns the executor for chaining.
//
// Example:
//
//	exec := executor.New(agent, config).
//	    RegisterHook(&LoggerHook{}).
//	    RegisterHook(&MetricsHook{})
func (e *Executor) RegisterHook(hook any) *Executor {
	e.hooks.Register(hook)
	return e
}

// Config returns the executor's configuration.
func (e *Executor) Config() Config {
	return e.config
}

// NewTask creates the AgentState and ExecutionContext for one task, with a fresh task
// id and the configured retries and limits. Pass the result to Execute.
func (e *Executor) NewTask(ctx context.Context, userInput string) *lessongraph.ExecutionContext {
	state := lessongraph.NewAgentState(uuid.NewString(), userInput, e.config.MaxRetries)
	execCtx := lessongraph.NewExecutionContext(ctx, "lessongraph", state)
	if e.config.Limits != nil {
		execCtx.SetLimits(e.config.Limits)
	}
	return execCtx
}

// Run executes one task and returns its final state. FinalAnswer is always set and
// Finished is always true on return. Use NewTask and Execute instead when the caller
// needs the stats or termination reason.
func (e *Executor) Run(ctx context.Context, userInput string) *lessongraph.AgentState {
	execCtx := e.NewTask(ctx, userInput)
	e.Execute(execCtx)
	return execCtx.State()
}

// Execute drives the graph until termination.
//
// The execution flow:
//  1. Call BeforeExecution hook
//  2. Repeatedly, until a stop condition:
//     - Stop if the context is done (canceled or limit exceeded)
//     - Ask the router for the next node; stop on End
//     - Stop if the step ceiling is reached
//     - Run the node between BeforeNode and AfterNode hooks
//     - Stop after the Error node
//  3. Record the termination reason and call AfterExecution hook
//
// Check execCtx.TerminationReason() and execCtx.State() afterwards.
func (e *Executor) Execute(execCtx *lessongraph.ExecutionContext) {
	if e.hooks != nil {
		execCtx.SetHookFirer(e.hooks)
	}
	state := execCtx.State()
	ctx := execCtx.Context()

	var reason lessongraph.TerminationReason
	beforeExecutionCalled := false
	defer func() {
		execCtx.SetTermination(reason)
		if beforeExecutionCalled && e.hooks != nil {
			e.hooks.FireAfterExecution(ctx, execCtx, lessongraph.AfterExecutionEvent{
				TerminationReason: reason,
				Steps:             execCtx.Step(),
				Error:             state.Err,
				Duration:          execCtx.Duration(),
			})
		}
	}()

	if e.hooks != nil {
		e.hooks.FireBeforeExecution(ctx, execCtx, lessongraph.BeforeExecutionEvent{
			TaskID:    state.TaskID,
			UserInput: state.UserInput(),
		})
	}
	beforeExecutionCalled = true

	reason = e.drive(execCtx)
}

func (e *Executor) drive(execCtx *lessongraph.ExecutionContext) lessongraph.TerminationReason {
	state := execCtx.State()
	maxSteps := e.config.maxSteps()

	for {
		// Handles both user cancel and limit exceeded.
		if execCtx.Context().Err() != nil {
			return stopCanceled(execCtx)
		}

		name := e.graph.Route(state)
		if name == lessongraph.NodeEnd {
			return lessongraph.TerminationSuccess
		}

		// The Error node may still run at the ceiling so the failure is described.
		if execCtx.Step() >= maxSteps && name != lessongraph.NodeError {
			if state.FinalAnswer == "" {
				state.FinalAnswer = StepLimitAnswer
			}
			state.Finished = true
			return lessongraph.TerminationStepLimit
		}

		node, ok := e.graph.Node(name)
		if name == lessongraph.NodeUnreachable || !ok {
			return stopUnreachable(execCtx, name)
		}

		e.runNode(execCtx, node)

		if name == lessongraph.NodeError {
			return lessongraph.TerminationError
		}
	}
}

func (e *Executor) runNode(execCtx *lessongraph.ExecutionContext, node lessongraph.Node) {
	ctx := execCtx.Context()
	execCtx.StartStep(node.Name())
	step := execCtx.Step()

	if e.hooks != nil {
		e.hooks.FireBeforeNode(ctx, execCtx, lessongraph.BeforeNodeEvent{Step: step, Node: node.Name()})
	}

	start := time.Now()
	node.Run(execCtx)
	duration := time.Since(start)

	if e.hooks != nil {
		e.hooks.FireAfterNode(ctx, execCtx, lessongraph.AfterNodeEvent{
			Step:     step,
			Node:     node.Name(),
			Duration: duration,
			Error:    execCtx.State().Err,
		})
	}
	execCtx.EndStep()
}

// stopCanceled records why the context ended. Any unreviewed answer is replaced.
func stopCanceled(execCtx *lessongraph.ExecutionContext) lessongraph.TerminationReason {
	state := execCtx.State()
	reason := lessongraph.TerminationContextCanceled

	if limit := execCtx.ExceededLimit(); limit != nil {
		reason = lessongraph.TerminationLimitExceeded
		detail := fmt.Sprintf("%s > %d", limit.Key, limit.MaxValue)
		state.Err = fmt.Errorf("%w: %s", lessongraph.ErrLimitExceeded, detail)
		state.FinalAnswer = fmt.Sprintf(limitAnswerFormat, detail)
	} else {
		state.Err = fmt.Errorf("%w: %w", lessongraph.ErrTaskCanceled, context.Cause(execCtx.Context()))
		state.FinalAnswer = CanceledAnswer
	}
	state.NeedRetry = false
	state.Finished = true
	execCtx.FireError(lessongraph.ErrorEvent{Err: state.Err})
	return reason
}

// stopUnreachable ends a task whose router fell through. The state's error is left
// alone so a reviewed answer is still returned.
func stopUnreachable(
	execCtx *lessongraph.ExecutionContext,
	name lessongraph.NodeName,
) lessongraph.TerminationReason {
	state := execCtx.State()
	execCtx.FireError(lessongraph.ErrorEvent{
		Err: fmt.Errorf("%w: next node %q (plan=%t answer=%t reviewed=%t retry=%t finished=%t)",
			lessongraph.ErrRouterUnreachable, name,
			state.Plan != "", state.FinalAnswer != "", state.CriticReviewed,
			state.NeedRetry, state.Finished),
	})
	if state.FinalAnswer == "" {
		state.FinalAnswer = UnreachableAnswer
	}
	state.Finished = true
	return lessongraph.TerminationUnreachable
}
