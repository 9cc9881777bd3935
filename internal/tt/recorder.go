package tt

import (
	"context"
	"sync"

	"github.com/rickchristie/lessongraph"
)

// RecordingHook implements every hook interface and records events in firing order.
type RecordingHook struct {
	mu     sync.Mutex
	events []lessongraph.HookEvent
}

// NewRecordingHook creates an empty RecordingHook.
func NewRecordingHook() *RecordingHook {
	return &RecordingHook{}
}

func (h *RecordingHook) record(e lessongraph.HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

// Events returns a copy of the recorded events.
func (h *RecordingHook) Events() []lessongraph.HookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]lessongraph.HookEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Names returns the event names in firing order.
func (h *RecordingHook) Names() []string {
	events := h.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = lessongraph.EventName(e)
	}
	return names
}

// Nodes returns the node names from BeforeNode events, in order.
func (h *RecordingHook) Nodes() []lessongraph.NodeName {
	var nodes []lessongraph.NodeName
	for _, e := range h.Events() {
		if before, ok := e.(lessongraph.BeforeNodeEvent); ok {
			nodes = append(nodes, before.Node)
		}
	}
	return nodes
}

// Errors returns the errors from ErrorEvents, in order.
func (h *RecordingHook) Errors() []error {
	var errs []error
	for _, e := range h.Events() {
		if ev, ok := e.(lessongraph.ErrorEvent); ok {
			errs = append(errs, ev.Err)
		}
	}
	return errs
}

func (h *RecordingHook) OnBeforeExecution(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.BeforeExecutionEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnAfterExecution(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterExecutionEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeNode(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.BeforeNodeEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnAfterNode(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterNodeEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnError(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.ErrorEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeModelCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.BeforeModelCallEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnAfterModelCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterModelCallEvent,
) {
	h.record(e)
}

func (h *RecordingHook) OnBeforeToolCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e *lessongraph.BeforeToolCallEvent,
) {
	h.record(*e)
}

func (h *RecordingHook) OnAfterToolCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterToolCallEvent,
) {
	h.record(e)
}

var (
	_ lessongraph.BeforeExecutionHook = (*RecordingHook)(nil)
	_ lessongraph.AfterExecutionHook  = (*RecordingHook)(nil)
	_ lessongraph.BeforeNodeHook      = (*RecordingHook)(nil)
	_ lessongraph.AfterNodeHook       = (*RecordingHook)(nil)
	_ lessongraph.ErrorHook           = (*RecordingHook)(nil)
	_ lessongraph.BeforeModelCallHook = (*RecordingHook)(nil)
	_ lessongraph.AfterModelCallHook  = (*RecordingHook)(nil)
	_ lessongraph.BeforeToolCallHook  = (*RecordingHook)(nil)
	_ lessongraph.AfterToolCallHook   = (*RecordingHook)(nil)
)
