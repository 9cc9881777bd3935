package loggers

import (
	"context"
	"errors"

	"github.com/rickchristie/lessongraph"
	"github.com/rs/zerolog"
)

// ZerologHook logs every hook event. Node and execution boundaries log at info,
// model and tool calls at debug, failures at warn and aborted tasks at error.
type ZerologHook struct {
	logger zerolog.Logger
}

// NewZerologHook creates a hook writing to logger.
func NewZerologHook(logger zerolog.Logger) *ZerologHook {
	return &ZerologHook{logger: logger}
}

func (h *ZerologHook) task(execCtx *lessongraph.ExecutionContext) zerolog.Logger {
	if state := execCtx.State(); state != nil {
		return h.logger.With().Str("task_id", state.TaskID).Logger()
	}
	return h.logger
}

func (h *ZerologHook) OnBeforeExecution(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.BeforeExecutionEvent,
) {
	l := h.task(execCtx)
	l.Info().Str("input", e.UserInput).Msg("task started")
}

func (h *ZerologHook) OnAfterExecution(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.AfterExecutionEvent,
) {
	l := h.task(execCtx)
	stats := execCtx.Stats()

	event := l.Info()
	if e.TerminationReason != lessongraph.TerminationSuccess {
		event = l.Error().Err(e.Error)
	}
	event.
		Str("reason", string(e.TerminationReason)).
		Int("steps", e.Steps).
		Dur("duration", e.Duration).
		Int64("input_tokens", stats.GetTotalInputTokens()).
		Int64("output_tokens", stats.GetTotalOutputTokens()).
		Int64("tool_calls", stats.GetToolCallCount()).
		Msg("task finished")
}

func (h *ZerologHook) OnBeforeNode(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.BeforeNodeEvent,
) {
	l := h.task(execCtx)
	l.Info().Int("step", e.Step).Str("node", string(e.Node)).Msg("node started")
}

func (h *ZerologHook) OnAfterNode(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.AfterNodeEvent,
) {
	l := h.task(execCtx)
	event := l.Info()
	if e.Error != nil {
		event = l.Warn().Err(e.Error)
	}
	event.Int("step", e.Step).Str("node", string(e.Node)).Dur("duration", e.Duration).Msg("node finished")
}

func (h *ZerologHook) OnBeforeModelCall(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.BeforeModelCallEvent,
) {
	l := h.task(execCtx)
	l.Debug().
		Str("model", e.Model).
		Int("attempt", e.Attempt).
		Int("messages", len(e.Messages)).
		Int("tools", e.ToolCount).
		Msg("model call")
}

func (h *ZerologHook) OnAfterModelCall(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.AfterModelCallEvent,
) {
	l := h.task(execCtx)
	if e.Error != nil {
		l.Warn().
			Err(e.Error).
			Str("model", e.Model).
			Int("attempt", e.Attempt).
			Bool("will_retry", e.WillRetry).
			Dur("duration", e.Duration).
			Msg("model call failed")
		return
	}

	event := l.Debug().
		Str("model", e.Model).
		Int("attempt", e.Attempt).
		Dur("duration", e.Duration)
	if e.Response != nil {
		event = event.Int("tool_calls", len(e.Response.ToolCalls))
		if info := e.Response.Info; info != nil {
			event = event.Int("input_tokens", info.InputTokens).Int("output_tokens", info.OutputTokens)
		}
	}
	event.Msg("model call finished")
}

func (h *ZerologHook) OnBeforeToolCall(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e *lessongraph.BeforeToolCallEvent,
) {
	l := h.task(execCtx)
	l.Debug().Str("tool", e.ToolName).Str("call_id", e.CallID).Interface("args", e.Args).Msg("tool call")
}

func (h *ZerologHook) OnAfterToolCall(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.AfterToolCallEvent,
) {
	l := h.task(execCtx)
	event := l.Debug()
	if e.Error != nil {
		event = l.Warn().Err(e.Error)
	}
	event.Str("tool", e.ToolName).Str("call_id", e.CallID).Dur("duration", e.Duration).Msg("tool call finished")
}

func (h *ZerologHook) OnError(
	_ context.Context, execCtx *lessongraph.ExecutionContext, e lessongraph.ErrorEvent,
) {
	l := h.task(execCtx)
	event := l.Warn()
	if errors.Is(e.Err, lessongraph.ErrTaskCanceled) || errors.Is(e.Err, lessongraph.ErrRemoteFailure) {
		event = l.Error()
	}
	event.Err(e.Err).Int("step", e.Step).Str("node", string(e.Node)).Msg("error")
}

var (
	_ lessongraph.BeforeExecutionHook = (*ZerologHook)(nil)
	_ lessongraph.AfterExecutionHook  = (*ZerologHook)(nil)
	_ lessongraph.BeforeNodeHook      = (*ZerologHook)(nil)
	_ lessongraph.AfterNodeHook       = (*ZerologHook)(nil)
	_ lessongraph.BeforeModelCallHook = (*ZerologHook)(nil)
	_ lessongraph.AfterModelCallHook  = (*ZerologHook)(nil)
	_ lessongraph.BeforeToolCallHook  = (*ZerologHook)(nil)
	_ lessongraph.AfterToolCallHook   = (*ZerologHook)(nil)
	_ lessongraph.ErrorHook           = (*ZerologHook)(nil)
)
