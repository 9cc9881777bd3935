package lessongraph

import (
	"context"
	"sync"
	"time"
)

// ExecutionContext is the ambient context passed through everything in the runtime.
// It carries the Go context, the task's AgentState, stats with limits, and the hook
// firer installed by the executor.
//
// Nodes, completion clients and the tool registry all receive the ExecutionContext,
// so hooks and stats work without manual wiring. Every exported method accepts a nil
// *ExecutionContext, which behaves as "background context, no hooks, no stats"; setters
// are no-ops on it.
type ExecutionContext struct {
	mu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc

	name  string
	state *AgentState

	// Current position (auto-tracked)
	step int
	node NodeName

	stats         *ExecutionStats
	limits        []Limit
	exceededLimit *Limit

	hookFirer HookFirer

	// Timing
	startTime time.Time
	endTime   time.Time

	// Termination
	terminationReason TerminationReason
}

// NewExecutionContext creates an ExecutionContext for one task.
// The given ctx is wrapped so that limit breaches can cancel in-flight calls.
// Limits default to [DefaultLimits].
func NewExecutionContext(ctx context.Context, name string, state *AgentState) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	inner, cancel := context.WithCancel(ctx)
	execCtx := &ExecutionContext{
		ctx:       inner,
		cancel:    cancel,
		name:      name,
		state:     state,
		stats:     NewExecutionStats(),
		limits:    DefaultLimits(),
		startTime: time.Now(),
	}
	execCtx.stats.onUpdate = execCtx.checkLimits
	return execCtx
}

// -----------------------------------------------------------------------------
// Data Access
// -----------------------------------------------------------------------------

// Context returns the Go context for blocking operations.
// Returns context.Background() for a nil ExecutionContext.
func (ctx *ExecutionContext) Context() context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx.ctx
}

// Name returns the name of this execution context.
func (ctx *ExecutionContext) Name() string {
	if ctx == nil {
		return ""
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.name
}

// State returns the task's AgentState.
func (ctx *ExecutionContext) State() *AgentState {
	if ctx == nil {
		return nil
	}
	return ctx.state
}

// Stats returns the task's stats. Returns a throwaway instance for a nil context.
func (ctx *ExecutionContext) Stats() *ExecutionStats {
	if ctx == nil {
		return NewExecutionStats()
	}
	return ctx.stats
}

// -----------------------------------------------------------------------------
// Step Management
// -----------------------------------------------------------------------------

// Step returns the current step number (1-indexed). Returns 0 before the first step.
func (ctx *ExecutionContext) Step() int {
	if ctx == nil {
		return 0
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.step
}

// CurrentNode returns the node being run, or "" outside a step.
func (ctx *ExecutionContext) CurrentNode() NodeName {
	if ctx == nil {
		return ""
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.node
}

// StartStep begins a new step for node. Called by the executor.
func (ctx *ExecutionContext) StartStep(node NodeName) {
	if ctx == nil {
		return
	}
	ctx.mu.Lock()
	ctx.step++
	ctx.node = node
	ctx.mu.Unlock()

	ctx.stats.incr(KeySteps, 1)
	ctx.stats.incr(KeyNodeVisitsFor.For(string(node)), 1)
}

// EndStep marks the end of the current step. Called by the executor.
func (ctx *ExecutionContext) EndStep() {
	if ctx == nil {
		return
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.node = ""
}

// -----------------------------------------------------------------------------
// Limits
// -----------------------------------------------------------------------------

// SetLimits replaces the limits checked on every stats update.
func (ctx *ExecutionContext) SetLimits(limits []Limit) {
	if ctx == nil {
		return
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.limits = limits
}

// Limits returns the configured limits.
func (ctx *ExecutionContext) Limits() []Limit {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	result := make([]Limit, len(ctx.limits))
	copy(result, ctx.limits)
	return result
}

// ExceededLimit returns the first limit that was exceeded, or nil.
func (ctx *ExecutionContext) ExceededLimit() *Limit {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.exceededLimit
}

// checkLimits cancels the context when any limit is exceeded. Only the first breach
// is recorded.
func (ctx *ExecutionContext) checkLimits() {
	ctx.mu.RLock()
	if ctx.exceededLimit != nil {
		ctx.mu.RUnlock()
		return
	}
	limits := ctx.limits
	ctx.mu.RUnlock()

	for i := range limits {
		for _, v := range ctx.stats.matching(limits[i]) {
			if v > limits[i].MaxValue {
				ctx.mu.Lock()
				if ctx.exceededLimit == nil {
					exceeded := limits[i]
					ctx.exceededLimit = &exceeded
				}
				ctx.mu.Unlock()
				ctx.cancel()
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Hooks
// -----------------------------------------------------------------------------

// SetHookFirer installs the hook dispatcher. Called by the executor.
func (ctx *ExecutionContext) SetHookFirer(firer HookFirer) {
	if ctx == nil {
		return
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.hookFirer = firer
}

func (ctx *ExecutionContext) firer() HookFirer {
	if ctx == nil {
		return nil
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.hookFirer
}

// FireBeforeModelCall dispatches to the installed hook firer, if any.
func (ctx *ExecutionContext) FireBeforeModelCall(event BeforeModelCallEvent) {
	if f := ctx.firer(); f != nil {
		f.FireBeforeModelCall(ctx.ctx, ctx, event)
	}
}

// FireAfterModelCall dispatches to the installed hook firer, if any.
func (ctx *ExecutionContext) FireAfterModelCall(event AfterModelCallEvent) {
	if f := ctx.firer(); f != nil {
		f.FireAfterModelCall(ctx.ctx, ctx, event)
	}
}

// FireBeforeToolCall dispatches to the installed hook firer, if any.
// Hooks may modify event.Args.
func (ctx *ExecutionContext) FireBeforeToolCall(event *BeforeToolCallEvent) {
	if f := ctx.firer(); f != nil {
		f.FireBeforeToolCall(ctx.ctx, ctx, event)
	}
}

// FireAfterToolCall dispatches to the installed hook firer, if any.
func (ctx *ExecutionContext) FireAfterToolCall(event AfterToolCallEvent) {
	if f := ctx.firer(); f != nil {
		f.FireAfterToolCall(ctx.ctx, ctx, event)
	}
}

// FireError dispatches to the installed hook firer, if any.
// Step and Node are filled in from the current position when unset.
func (ctx *ExecutionContext) FireError(event ErrorEvent) {
	f := ctx.firer()
	if f == nil {
		return
	}
	if event.Step == 0 {
		event.Step = ctx.Step()
	}
	if event.Node == "" {
		event.Node = ctx.CurrentNode()
	}
	f.FireError(ctx.ctx, ctx, event)
}

// -----------------------------------------------------------------------------
// Termination
// -----------------------------------------------------------------------------

// SetTermination records why the task ended and releases the context.
// Called by the executor when execution ends.
func (ctx *ExecutionContext) SetTermination(reason TerminationReason) {
	if ctx == nil {
		return
	}
	ctx.mu.Lock()
	ctx.terminationReason = reason
	ctx.endTime = time.Now()
	ctx.mu.Unlock()
	ctx.cancel()
}

// TerminationReason returns why execution terminated.
func (ctx *ExecutionContext) TerminationReason() TerminationReason {
	if ctx == nil {
		return ""
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.terminationReason
}

// StartTime returns when execution began.
func (ctx *ExecutionContext) StartTime() time.Time {
	if ctx == nil {
		return time.Time{}
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.startTime
}

// EndTime returns when execution completed.
func (ctx *ExecutionContext) EndTime() time.Time {
	if ctx == nil {
		return time.Time{}
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.endTime
}

// Duration returns the total execution duration.
// If execution is still in progress, returns duration since start.
func (ctx *ExecutionContext) Duration() time.Duration {
	if ctx == nil {
		return 0
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	if ctx.endTime.IsZero() {
		return time.Since(ctx.startTime)
	}
	return ctx.endTime.Sub(ctx.startTime)
}
