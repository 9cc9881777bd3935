package loggers

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rickchristie/lessongraph"
	"gopkg.in/yaml.v3"
)

// TraceHook writes a human-readable transcript of a task: every node, every message
// sent to a model, every completion and every tool call. Nothing is truncated.
// Structured values are written as YAML.
//
// It is meant for debugging prompts, not for production logs; use ZerologHook there.
type TraceHook struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTraceHook creates a hook writing to w.
func NewTraceHook(w io.Writer) *TraceHook {
	return &TraceHook{out: w}
}

func (h *TraceHook) header(format string, args ...any) {
	fmt.Fprintf(h.out, "\n>>> "+format+"\n", args...)
}

func (h *TraceHook) line(format string, args ...any) {
	fmt.Fprintf(h.out, format+"\n", args...)
}

func (h *TraceHook) block(label, text string) {
	h.line("%s:", label)
	for _, l := range strings.Split(text, "\n") {
		h.line("  %s", l)
	}
}

func (h *TraceHook) yaml(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		h.line("(failed to marshal: %v)", err)
		return
	}
	fmt.Fprint(h.out, string(data))
}

func (h *TraceHook) OnBeforeExecution(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.BeforeExecutionEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.line("================================================================================")
	h.line("TASK %s", e.TaskID)
	h.line("================================================================================")
	h.block("Input", e.UserInput)
}

func (h *TraceHook) OnAfterExecution(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.AfterExecutionEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Finished: %s after %d steps (%s)", e.TerminationReason, e.Steps, e.Duration)
	if e.Error != nil {
		h.line("Error: %v", e.Error)
	}
	stats := execCtx.Stats()
	h.line("Tokens: input=%d, output=%d", stats.GetTotalInputTokens(), stats.GetTotalOutputTokens())
	h.line("Tool calls: %d", stats.GetToolCallCount())
	if state := execCtx.State(); state != nil && state.FinalAnswer != "" {
		h.block("Final answer", state.FinalAnswer)
	}
}

func (h *TraceHook) OnBeforeNode(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.BeforeNodeEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Step %d: %s", e.Step, e.Node)
}

func (h *TraceHook) OnAfterNode(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterNodeEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Step %d: %s done (%s)", e.Step, e.Node, e.Duration)
	if e.Error != nil {
		h.line("Error: %v", e.Error)
	}
}

func (h *TraceHook) OnBeforeModelCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.BeforeModelCallEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Model call: %s (attempt %d, %d tools)", e.Model, e.Attempt, e.ToolCount)
	for i, msg := range e.Messages {
		h.line("[%d] %s", i, msg.Role)
		if msg.Text != "" {
			for _, l := range strings.Split(msg.Text, "\n") {
				h.line("    %s", l)
			}
		}
		if msg.ToolCallID != "" {
			h.line("    (result for %s)", msg.ToolCallID)
		}
		if len(msg.ToolCalls) > 0 {
			h.yaml(msg.ToolCalls)
		}
	}
}

func (h *TraceHook) OnAfterModelCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterModelCallEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Model response: %s (%s)", e.Model, e.Duration)
	if e.Error != nil {
		h.line("Error: %v", e.Error)
		if e.WillRetry {
			h.line("Retrying.")
		}
		return
	}
	if e.Response == nil {
		return
	}
	if e.Response.Text != "" {
		h.block("Text", e.Response.Text)
	}
	if len(e.Response.ToolCalls) > 0 {
		h.line("Tool calls:")
		h.yaml(e.Response.ToolCalls)
	}
	if e.Response.StopReason != "" {
		h.line("Stop reason: %s", e.Response.StopReason)
	}
	if info := e.Response.Info; info != nil {
		h.line("Tokens: input=%d, output=%d", info.InputTokens, info.OutputTokens)
	}
}

func (h *TraceHook) OnBeforeToolCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e *lessongraph.BeforeToolCallEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Tool call: %s [%s]", e.ToolName, e.CallID)
	if len(e.Args) > 0 {
		h.yaml(e.Args)
	}
}

func (h *TraceHook) OnAfterToolCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterToolCallEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Tool result: %s [%s] (%s)", e.ToolName, e.CallID, e.Duration)
	if e.Error != nil {
		h.line("Error: %v", e.Error)
	}
	h.block("Output", e.Output)
}

func (h *TraceHook) OnError(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.ErrorEvent,
) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.header("Error at step %d (%s)", e.Step, e.Node)
	h.line("%v", e.Err)
}

var (
	_ lessongraph.BeforeExecutionHook = (*TraceHook)(nil)
	_ lessongraph.AfterExecutionHook  = (*TraceHook)(nil)
	_ lessongraph.BeforeNodeHook      = (*TraceHook)(nil)
	_ lessongraph.AfterNodeHook       = (*TraceHook)(nil)
	_ lessongraph.BeforeModelCallHook = (*TraceHook)(nil)
	_ lessongraph.AfterModelCallHook  = (*TraceHook)(nil)
	_ lessongraph.BeforeToolCallHook  = (*TraceHook)(nil)
	_ lessongraph.AfterToolCallHook   = (*TraceHook)(nil)
	_ lessongraph.ErrorHook           = (*TraceHook)(nil)
)
