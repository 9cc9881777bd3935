package hooks

import (
	"context"

	"github.com/rickchristie/lessongraph"
)

// Registry holds hooks in registration order and fans each event out to the hooks
// whose interface matches it. A hook implementing only AfterNodeHook never sees
// model or tool events.
//
// One registry may be shared by several executors. Registration is not synchronized,
// so register everything before the first task starts; firing is safe from many
// tasks at once as long as the hooks themselves are.
//
// A hook that times each node and counts critic rejections:
//
//	type nodeTimer struct {
//	    mu       sync.Mutex
//	    elapsed  map[lessongraph.NodeName]time.Duration
//	    rejected int
//	}
//
//	func (t *nodeTimer) OnAfterNode(
//	    _ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.AfterNodeEvent,
//	) {
//	    t.mu.Lock()
//	    defer t.mu.Unlock()
//	    t.elapsed[e.Node] += e.Duration
//	    if e.Node == lessongraph.NodeCritic && execCtx.State().NeedRetry {
//	        t.rejected++
//	    }
//	}
//
//	registry := hooks.NewRegistry().Register(&nodeTimer{elapsed: map[lessongraph.NodeName]time.Duration{}})
//	exec := executor.New(graph, executor.DefaultConfig()).WithHooks(registry)
type Registry struct {
	hooks []any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register appends hook. It may implement any subset of the hook interfaces in the
// lessongraph package; a value implementing none is kept but never called.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// FireBeforeExecution runs once per task, before the planner.
func (r *Registry) FireBeforeExecution(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.BeforeExecutionEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.BeforeExecutionHook); ok {
			hook.OnBeforeExecution(ctx, execCtx, event)
		}
	}
}

// FireAfterExecution runs once per task after the graph stops, whatever the
// termination reason.
func (r *Registry) FireAfterExecution(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.AfterExecutionEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.AfterExecutionHook); ok {
			hook.OnAfterExecution(ctx, execCtx, event)
		}
	}
}

// FireBeforeNode runs as the executor enters a node.
func (r *Registry) FireBeforeNode(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.BeforeNodeEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.BeforeNodeHook); ok {
			hook.OnBeforeNode(ctx, execCtx, event)
		}
	}
}

// FireAfterNode runs once the node has written its updates to the AgentState.
func (r *Registry) FireAfterNode(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.AfterNodeEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.AfterNodeHook); ok {
			hook.OnAfterNode(ctx, execCtx, event)
		}
	}
}

// FireError reports failures, including contained ones such as a failed tool call
// that the worker recovers from.
func (r *Registry) FireError(ctx context.Context, execCtx *lessongraph.ExecutionContext, event lessongraph.ErrorEvent) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.ErrorHook); ok {
			hook.OnError(ctx, execCtx, event)
		}
	}
}

// FireBeforeModelCall runs before every attempt, so a retried request is seen
// more than once.
func (r *Registry) FireBeforeModelCall(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.BeforeModelCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, execCtx, event)
		}
	}
}

// FireAfterModelCall runs after every attempt, successful or not.
func (r *Registry) FireAfterModelCall(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.AfterModelCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, execCtx, event)
		}
	}
}

// FireBeforeToolCall passes the event by pointer; later hooks and the tool itself
// see any change a hook makes to event.Args.
func (r *Registry) FireBeforeToolCall(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event *lessongraph.BeforeToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.BeforeToolCallHook); ok {
			hook.OnBeforeToolCall(ctx, execCtx, event)
		}
	}
}

func (r *Registry) FireAfterToolCall(
	ctx context.Context,
	execCtx *lessongraph.ExecutionContext,
	event lessongraph.AfterToolCallEvent,
) {
	for _, h := range r.hooks {
		if hook, ok := h.(lessongraph.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, execCtx, event)
		}
	}
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.hooks)
}

// Clear drops every hook.
func (r *Registry) Clear() {
	r.hooks = make([]any, 0)
}

var _ lessongraph.HookFirer = (*Registry)(nil)
