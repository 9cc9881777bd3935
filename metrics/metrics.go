// Package metrics exports task execution metrics to Prometheus.
//
//	m := metrics.NewHook()
//	exec.RegisterHook(m)
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rickchristie/lessongraph"
)

const namespace = "lessongraph"

// Hook records Prometheus metrics from hook events on its own registry.
type Hook struct {
	registry *prometheus.Registry

	TasksTotal      *prometheus.CounterVec
	TaskDuration    prometheus.Histogram
	NodeExecutions  *prometheus.CounterVec
	NodeDuration    *prometheus.HistogramVec
	ModelCallsTotal *prometheus.CounterVec
	ModelDuration   *prometheus.HistogramVec
	ModelTokens     *prometheus.CounterVec
	ToolCallsTotal  *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewHook creates the metrics and registers them on a new registry.
func NewHook() *Hook {
	registry := prometheus.NewRegistry()

	h := &Hook{
		registry: registry,

		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Total number of tasks by termination reason",
			},
			[]string{"reason"},
		),
		TaskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Duration of whole tasks in seconds",
				Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		NodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_executions_total",
				Help:      "Total number of node executions",
			},
			[]string{"node", "status"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Duration of node executions in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"node"},
		),
		ModelCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_calls_total",
				Help:      "Total number of model attempts",
			},
			[]string{"model", "status"},
		),
		ModelDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Duration of model attempts in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		ModelTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "model_tokens_total",
				Help:      "Total number of tokens by direction",
			},
			[]string{"model", "direction"},
		),
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Duration of tool calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of reported errors by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		h.TasksTotal,
		h.TaskDuration,
		h.NodeExecutions,
		h.NodeDuration,
		h.ModelCallsTotal,
		h.ModelDuration,
		h.ModelTokens,
		h.ToolCallsTotal,
		h.ToolDuration,
		h.ErrorsTotal,
	)
	return h
}

// Registry returns the Prometheus registry.
func (h *Hook) Registry() *prometheus.Registry {
	return h.registry
}

// Handler serves the registry in the Prometheus text format.
func (h *Hook) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *Hook) OnAfterExecution(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterExecutionEvent,
) {
	h.TasksTotal.WithLabelValues(string(e.TerminationReason)).Inc()
	h.TaskDuration.Observe(e.Duration.Seconds())
}

func (h *Hook) OnAfterNode(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterNodeEvent,
) {
	h.NodeExecutions.WithLabelValues(string(e.Node), status(e.Error)).Inc()
	h.NodeDuration.WithLabelValues(string(e.Node)).Observe(e.Duration.Seconds())
}

func (h *Hook) OnAfterModelCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterModelCallEvent,
) {
	h.ModelCallsTotal.WithLabelValues(e.Model, status(e.Error)).Inc()
	h.ModelDuration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
	if e.Response != nil && e.Response.Info != nil {
		h.ModelTokens.WithLabelValues(e.Model, "input").Add(float64(e.Response.Info.InputTokens))
		h.ModelTokens.WithLabelValues(e.Model, "output").Add(float64(e.Response.Info.OutputTokens))
	}
}

func (h *Hook) OnAfterToolCall(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.AfterToolCallEvent,
) {
	h.ToolCallsTotal.WithLabelValues(e.ToolName, status(e.Error)).Inc()
	h.ToolDuration.WithLabelValues(e.ToolName).Observe(e.Duration.Seconds())
}

func (h *Hook) OnError(
	_ context.Context, _ *lessongraph.ExecutionContext, e lessongraph.ErrorEvent,
) {
	h.ErrorsTotal.WithLabelValues(Kind(e.Err)).Inc()
}

// Kind classifies an error into a low-cardinality label value.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, lessongraph.ErrRemoteFailure):
		return "remote_failure"
	case errors.Is(err, lessongraph.ErrToolNotFound):
		return "tool_not_found"
	case errors.Is(err, lessongraph.ErrInvalidArguments):
		return "invalid_arguments"
	case errors.Is(err, lessongraph.ErrToolHandler):
		return "tool_handler"
	case errors.Is(err, lessongraph.ErrToolLoopExceeded):
		return "tool_loop_exceeded"
	case errors.Is(err, lessongraph.ErrMalformedCriticOutput):
		return "malformed_critic_output"
	case errors.Is(err, lessongraph.ErrRouterUnreachable):
		return "router_unreachable"
	case errors.Is(err, lessongraph.ErrTaskCanceled):
		return "canceled"
	case errors.Is(err, lessongraph.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, lessongraph.ErrEmptyAnswer):
		return "empty_answer"
	default:
		return "other"
	}
}

var (
	_ lessongraph.AfterExecutionHook = (*Hook)(nil)
	_ lessongraph.AfterNodeHook      = (*Hook)(nil)
	_ lessongraph.AfterModelCallHook = (*Hook)(nil)
	_ lessongraph.AfterToolCallHook  = (*Hook)(nil)
	_ lessongraph.ErrorHook          = (*Hook)(nil)
)
