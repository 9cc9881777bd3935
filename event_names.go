package lessongraph

// Event name constants identify hook events in logs and metrics labels.
//
// # Naming Convention
//
// Event names follow the pattern: "namespace:category:timing"
//   - namespace: "lessongraph" for framework events
//   - category: what the event is about (execution, node, model_call, tool_call)
//   - timing: when in the lifecycle (before, after), omitted for single events
const (
	// Execution lifecycle
	EventNameExecutionBefore = "lessongraph:execution:before"
	EventNameExecutionAfter  = "lessongraph:execution:after"

	// Node lifecycle
	EventNameNodeBefore = "lessongraph:node:before"
	EventNameNodeAfter  = "lessongraph:node:after"

	// Model calls
	EventNameModelCallBefore = "lessongraph:model_call:before"
	EventNameModelCallAfter  = "lessongraph:model_call:after"

	// Tool calls
	EventNameToolCallBefore = "lessongraph:tool_call:before"
	EventNameToolCallAfter  = "lessongraph:tool_call:after"

	EventNameError = "lessongraph:error"
)

// EventName returns the event name constant for a hook event.
func EventName(e HookEvent) string {
	switch e.(type) {
	case BeforeExecutionEvent:
		return EventNameExecutionBefore
	case AfterExecutionEvent:
		return EventNameExecutionAfter
	case BeforeNodeEvent:
		return EventNameNodeBefore
	case AfterNodeEvent:
		return EventNameNodeAfter
	case BeforeModelCallEvent:
		return EventNameModelCallBefore
	case AfterModelCallEvent:
		return EventNameModelCallAfter
	case BeforeToolCallEvent, *BeforeToolCallEvent:
		return EventNameToolCallBefore
	case AfterToolCallEvent:
		return EventNameToolCallAfter
	case ErrorEvent:
		return EventNameError
	default:
		return ""
	}
}
