package lessongraph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Nil safety
// -----------------------------------------------------------------------------

func TestExecutionContext_NilIsUsable(t *testing.T) {
	var execCtx *ExecutionContext

	assert.Equal(t, context.Background(), execCtx.Context())
	assert.Nil(t, execCtx.State())
	assert.Equal(t, 0, execCtx.Step())
	assert.Equal(t, NodeName(""), execCtx.CurrentNode())
	assert.Nil(t, execCtx.ExceededLimit())

	stats := execCtx.Stats()
	require.NotNil(t, stats)
	stats.IncrCounter(KeyToolCalls, 1)
	assert.Equal(t, int64(0), execCtx.Stats().GetToolCallCount(), "each call gets a fresh instance")

	assert.NotPanics(t, func() {
		execCtx.FireBeforeModelCall(BeforeModelCallEvent{Model: "m"})
		execCtx.FireAfterModelCall(AfterModelCallEvent{Model: "m"})
		execCtx.FireBeforeToolCall(&BeforeToolCallEvent{ToolName: "t"})
		execCtx.FireAfterToolCall(AfterToolCallEvent{ToolName: "t"})
		execCtx.FireError(ErrorEvent{Err: ErrToolNotFound})
	})

	assert.NotPanics(t, func() {
		execCtx.StartStep(NodeWorker)
		execCtx.EndStep()
		execCtx.SetLimits(DefaultLimits())
		execCtx.SetHookFirer(nil)
		execCtx.SetTermination(TerminationSuccess)
	})
	assert.Equal(t, "", execCtx.Name())
	assert.Nil(t, execCtx.Limits())
	assert.Equal(t, TerminationReason(""), execCtx.TerminationReason())
	assert.True(t, execCtx.StartTime().IsZero())
	assert.True(t, execCtx.EndTime().IsZero())
	assert.Equal(t, time.Duration(0), execCtx.Duration())
}

// -----------------------------------------------------------------------------
// Steps
// -----------------------------------------------------------------------------

func TestExecutionContext_Steps(t *testing.T) {
	execCtx := NewExecutionContext(context.Background(), "test", NewAgentState("t1", "task", 2))

	execCtx.StartStep(NodePlanner)
	assert.Equal(t, 1, execCtx.Step())
	assert.Equal(t, NodePlanner, execCtx.CurrentNode())
	execCtx.EndStep()
	assert.Equal(t, NodeName(""), execCtx.CurrentNode())

	execCtx.StartStep(NodeWorker)
	execCtx.EndStep()
	execCtx.StartStep(NodeWorker)
	execCtx.EndStep()

	stats := execCtx.Stats()
	assert.Equal(t, int64(3), stats.GetSteps())
	assert.Equal(t, int64(2), stats.GetCounter(KeyNodeVisitsFor.For("worker")))
	assert.Equal(t, 3, execCtx.Step())
}

func TestExecutionStats_ProtectedKeys(t *testing.T) {
	stats := NewExecutionStats()

	stats.IncrCounter(KeySteps, 5)
	stats.IncrCounter(KeyToolCalls, 2)

	assert.Equal(t, int64(0), stats.GetSteps())
	assert.Equal(t, int64(2), stats.GetToolCallCount())
	assert.Panics(t, func() { stats.IncrCounter(KeyToolCalls, -1) })
}

// -----------------------------------------------------------------------------
// Limits
// -----------------------------------------------------------------------------

func TestExecutionContext_Limits(t *testing.T) {
	tests := []struct {
		name     string
		limit    Limit
		incr     map[StatKey]int64
		expected bool
	}{
		{
			name:     "exact key at threshold",
			limit:    Limit{Type: LimitExactKey, Key: KeyToolCalls, MaxValue: 3},
			incr:     map[StatKey]int64{KeyToolCalls: 3},
			expected: false,
		},
		{
			name:     "exact key over threshold",
			limit:    Limit{Type: LimitExactKey, Key: KeyToolCalls, MaxValue: 3},
			incr:     map[StatKey]int64{KeyToolCalls: 4},
			expected: true,
		},
		{
			name:     "prefix matches any tool",
			limit:    Limit{Type: LimitKeyPrefix, Key: KeyToolCallsFor, MaxValue: 1},
			incr:     map[StatKey]int64{KeyToolCallsFor.For("a"): 1, KeyToolCallsFor.For("calculator"): 2},
			expected: true,
		},
		{
			name:     "prefix ignores other keys",
			limit:    Limit{Type: LimitKeyPrefix, Key: KeyToolCallsFor, MaxValue: 1},
			incr:     map[StatKey]int64{KeyInputTokens: 100},
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			execCtx := NewExecutionContext(context.Background(), "test", nil)
			execCtx.SetLimits([]Limit{tc.limit})

			for key, delta := range tc.incr {
				execCtx.Stats().IncrCounter(key, delta)
			}

			if tc.expected {
				require.NotNil(t, execCtx.ExceededLimit())
				assert.Equal(t, tc.limit, *execCtx.ExceededLimit())
				assert.Error(t, execCtx.Context().Err())
			} else {
				assert.Nil(t, execCtx.ExceededLimit())
				assert.NoError(t, execCtx.Context().Err())
			}
		})
	}
}

func TestExecutionContext_DefaultLimits(t *testing.T) {
	execCtx := NewExecutionContext(context.Background(), "test", nil)
	assert.Equal(t, DefaultLimits(), execCtx.Limits())
}

func TestExecutionContext_SetTermination(t *testing.T) {
	execCtx := NewExecutionContext(context.Background(), "test", nil)

	execCtx.SetTermination(TerminationSuccess)

	assert.Equal(t, TerminationSuccess, execCtx.TerminationReason())
	assert.False(t, execCtx.EndTime().IsZero())
	assert.Error(t, execCtx.Context().Err(), "context is released on termination")
	assert.Equal(t, execCtx.EndTime().Sub(execCtx.StartTime()), execCtx.Duration())
}
