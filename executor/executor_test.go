package executor_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/executor"
	"github.com/rickchristie/lessongraph/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Mock Infrastructure
// -----------------------------------------------------------------------------

type funcNode struct {
	name lessongraph.NodeName
	fn   func(execCtx *lessongraph.ExecutionContext)
}

func (n funcNode) Name() lessongraph.NodeName { return n.name }

func (n funcNode) Run(execCtx *lessongraph.ExecutionContext) {
	if n.fn != nil {
		n.fn(execCtx)
	}
}

// scriptedGraph routes with a function and runs funcNodes.
type scriptedGraph struct {
	route func(state *lessongraph.AgentState) lessongraph.NodeName
	nodes map[lessongraph.NodeName]func(execCtx *lessongraph.ExecutionContext)
}

func (g *scriptedGraph) Route(state *lessongraph.AgentState) lessongraph.NodeName {
	return g.route(state)
}

func (g *scriptedGraph) Node(name lessongraph.NodeName) (lessongraph.Node, bool) {
	fn, ok := g.nodes[name]
	if !ok {
		return nil, false
	}
	return funcNode{name: name, fn: fn}, true
}

// happyGraph plans, answers and ends.
func happyGraph() *scriptedGraph {
	return &scriptedGraph{
		route: func(s *lessongraph.AgentState) lessongraph.NodeName {
			switch {
			case s.Err != nil:
				return lessongraph.NodeError
			case s.Plan == "":
				return lessongraph.NodePlanner
			case !s.Finished:
				return lessongraph.NodeWorker
			default:
				return lessongraph.NodeEnd
			}
		},
		nodes: map[lessongraph.NodeName]func(*lessongraph.ExecutionContext){
			lessongraph.NodePlanner: func(execCtx *lessongraph.ExecutionContext) {
				execCtx.State().Plan = "plan"
			},
			lessongraph.NodeWorker: func(execCtx *lessongraph.ExecutionContext) {
				execCtx.State().FinalAnswer = "answer"
				execCtx.State().Finished = true
			},
			lessongraph.NodeError: func(execCtx *lessongraph.ExecutionContext) {
				execCtx.State().FinalAnswer = "failed: " + execCtx.State().Err.Error()
				execCtx.State().Finished = true
			},
		},
	}
}

// spinningGraph routes to the Worker forever.
func spinningGraph(work func(*lessongraph.ExecutionContext)) *scriptedGraph {
	return &scriptedGraph{
		route: func(*lessongraph.AgentState) lessongraph.NodeName { return lessongraph.NodeWorker },
		nodes: map[lessongraph.NodeName]func(*lessongraph.ExecutionContext){
			lessongraph.NodeWorker: work,
		},
	}
}

// -----------------------------------------------------------------------------
// Normal Termination
// -----------------------------------------------------------------------------

func TestExecutor_RunsUntilEnd(t *testing.T) {
	recorder := tt.NewRecordingHook()
	exec := executor.New(happyGraph(), executor.DefaultConfig()).RegisterHook(recorder)

	execCtx := exec.NewTask(context.Background(), "task")
	exec.Execute(execCtx)

	state := execCtx.State()
	assert.Equal(t, "answer", state.FinalAnswer)
	assert.True(t, state.Finished)
	assert.NoError(t, state.Err)
	assert.Equal(t, lessongraph.TerminationSuccess, execCtx.TerminationReason())
	assert.Equal(t, 2, execCtx.Step())
	assert.Equal(t, int64(1), execCtx.Stats().GetCounter(lessongraph.KeyNodeVisitsFor.For("planner")))

	assert.Equal(t, []string{
		lessongraph.EventNameExecutionBefore,
		lessongraph.EventNameNodeBefore,
		lessongraph.EventNameNodeAfter,
		lessongraph.EventNameNodeBefore,
		lessongraph.EventNameNodeAfter,
		lessongraph.EventNameExecutionAfter,
	}, recorder.Names())
	assert.Equal(t, []lessongraph.NodeName{lessongraph.NodePlanner, lessongraph.NodeWorker}, recorder.Nodes())

	events := recorder.Events()
	before := events[0].(lessongraph.BeforeExecutionEvent)
	assert.Equal(t, state.TaskID, before.TaskID)
	assert.Equal(t, "task", before.UserInput)

	after := events[len(events)-1].(lessongraph.AfterExecutionEvent)
	assert.Equal(t, lessongraph.TerminationSuccess, after.TerminationReason)
	assert.Equal(t, 2, after.Steps)
	assert.NoError(t, after.Error)
}

func TestExecutor_RunAssignsTaskIDAndRetries(t *testing.T) {
	type expected struct {
		maxRetries int
	}

	tests := []struct {
		name     string
		input    int
		expected expected
	}{
		{name: "default", input: lessongraph.DefaultMaxRetries, expected: expected{maxRetries: 2}},
		{name: "zero", input: 0, expected: expected{maxRetries: 0}},
		{name: "negative clamps to zero", input: -1, expected: expected{maxRetries: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := executor.DefaultConfig()
			config.MaxRetries = tc.input
			exec := executor.New(happyGraph(), config)

			first := exec.Run(context.Background(), "a")
			second := exec.Run(context.Background(), "b")

			assert.Equal(t, tc.expected.maxRetries, first.MaxRetries)
			_, err := uuid.Parse(first.TaskID)
			assert.NoError(t, err)
			assert.NotEqual(t, first.TaskID, second.TaskID)
			assert.Equal(t, "b", second.UserInput())
		})
	}
}

// -----------------------------------------------------------------------------
// Step Ceiling
// -----------------------------------------------------------------------------

func TestExecutor_StepCeiling(t *testing.T) {
	type input struct {
		maxSteps int
		answer   string
	}

	type expected struct {
		steps  int
		answer string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "default ceiling",
			input:    input{maxSteps: 0},
			expected: expected{steps: executor.DefaultMaxSteps, answer: executor.StepLimitAnswer},
		},
		{
			name:     "custom ceiling",
			input:    input{maxSteps: 3},
			expected: expected{steps: 3, answer: executor.StepLimitAnswer},
		},
		{
			name:     "existing answer is kept",
			input:    input{maxSteps: 2, answer: "partial"},
			expected: expected{steps: 2, answer: "partial"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			graph := spinningGraph(func(execCtx *lessongraph.ExecutionContext) {
				calls++
				execCtx.State().FinalAnswer = tc.input.answer
			})
			exec := executor.New(graph, executor.Config{MaxSteps: tc.input.maxSteps})

			execCtx := exec.NewTask(context.Background(), "task")
			exec.Execute(execCtx)

			assert.Equal(t, tc.expected.steps, calls)
			assert.Equal(t, tc.expected.steps, execCtx.Step())
			assert.Equal(t, tc.expected.answer, execCtx.State().FinalAnswer)
			assert.True(t, execCtx.State().Finished)
			assert.Equal(t, lessongraph.TerminationStepLimit, execCtx.TerminationReason())
		})
	}
}

// -----------------------------------------------------------------------------
// Error Node
// -----------------------------------------------------------------------------

func TestExecutor_StopsAfterErrorNode(t *testing.T) {
	graph := happyGraph()
	graph.nodes[lessongraph.NodePlanner] = func(execCtx *lessongraph.ExecutionContext) {
		execCtx.State().Err = lessongraph.ErrRemoteFailure
	}
	recorder := tt.NewRecordingHook()
	exec := executor.New(graph, executor.DefaultConfig()).RegisterHook(recorder)

	execCtx := exec.NewTask(context.Background(), "task")
	exec.Execute(execCtx)

	assert.Equal(t, []lessongraph.NodeName{lessongraph.NodePlanner, lessongraph.NodeError}, recorder.Nodes())
	assert.Equal(t, lessongraph.TerminationError, execCtx.TerminationReason())
	assert.Equal(t, "failed: remote model call failed", execCtx.State().FinalAnswer)

	after := recorder.Events()[len(recorder.Events())-1].(lessongraph.AfterExecutionEvent)
	assert.ErrorIs(t, after.Error, lessongraph.ErrRemoteFailure)
}

func TestExecutor_ErrorNodeRunsAtCeiling(t *testing.T) {
	graph := happyGraph()
	graph.nodes[lessongraph.NodePlanner] = func(execCtx *lessongraph.ExecutionContext) {
		execCtx.State().Err = lessongraph.ErrRemoteFailure
	}
	exec := executor.New(graph, executor.Config{MaxSteps: 1})

	execCtx := exec.NewTask(context.Background(), "task")
	exec.Execute(execCtx)

	assert.Equal(t, 2, execCtx.Step())
	assert.Equal(t, lessongraph.TerminationError, execCtx.TerminationReason())
	assert.Contains(t, execCtx.State().FinalAnswer, "failed:")
}

// -----------------------------------------------------------------------------
// Cancellation & Limits
// -----------------------------------------------------------------------------

func TestExecutor_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	recorder := tt.NewRecordingHook()
	exec := executor.New(happyGraph(), executor.DefaultConfig()).RegisterHook(recorder)

	execCtx := exec.NewTask(ctx, "task")
	exec.Execute(execCtx)

	state := execCtx.State()
	assert.Empty(t, recorder.Nodes())
	assert.ErrorIs(t, state.Err, lessongraph.ErrTaskCanceled)
	assert.ErrorIs(t, state.Err, context.Canceled)
	assert.Equal(t, executor.CanceledAnswer, state.FinalAnswer)
	assert.True(t, state.Finished)
	assert.Equal(t, lessongraph.TerminationContextCanceled, execCtx.TerminationReason())
	require.Len(t, recorder.Errors(), 1)
	assert.ErrorIs(t, recorder.Errors()[0], lessongraph.ErrTaskCanceled)
}

func TestExecutor_CanceledBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	graph := happyGraph()
	graph.nodes[lessongraph.NodePlanner] = func(execCtx *lessongraph.ExecutionContext) {
		execCtx.State().Plan = "plan"
		cancel()
	}
	exec := executor.New(graph, executor.DefaultConfig())

	execCtx := exec.NewTask(ctx, "task")
	exec.Execute(execCtx)

	assert.Equal(t, 1, execCtx.Step(), "worker never runs")
	assert.Equal(t, lessongraph.TerminationContextCanceled, execCtx.TerminationReason())
	assert.Equal(t, executor.CanceledAnswer, execCtx.State().FinalAnswer)
}

func TestExecutor_LimitExceeded(t *testing.T) {
	graph := spinningGraph(func(execCtx *lessongraph.ExecutionContext) {
		execCtx.Stats().IncrCounter(lessongraph.KeyToolCalls, 1)
	})
	config := executor.DefaultConfig()
	config.Limits = []lessongraph.Limit{
		{Type: lessongraph.LimitExactKey, Key: lessongraph.KeyToolCalls, MaxValue: 2},
	}
	exec := executor.New(graph, config)

	execCtx := exec.NewTask(context.Background(), "task")
	exec.Execute(execCtx)

	state := execCtx.State()
	assert.Equal(t, 3, execCtx.Step())
	assert.Equal(t, lessongraph.TerminationLimitExceeded, execCtx.TerminationReason())
	assert.ErrorIs(t, state.Err, lessongraph.ErrLimitExceeded)
	assert.Contains(t, state.FinalAnswer, "lessongraph:tool_calls > 2")
	assert.True(t, state.Finished)
	require.NotNil(t, execCtx.ExceededLimit())
}

func TestExecutor_EmptyLimitsDisableDefaults(t *testing.T) {
	graph := spinningGraph(func(execCtx *lessongraph.ExecutionContext) {
		execCtx.Stats().IncrCounter(lessongraph.KeyToolCalls, 100)
	})
	exec := executor.New(graph, executor.Config{MaxSteps: 2, Limits: []lessongraph.Limit{}})

	execCtx := exec.NewTask(context.Background(), "task")
	exec.Execute(execCtx)

	assert.Equal(t, lessongraph.TerminationStepLimit, execCtx.TerminationReason())
}

// -----------------------------------------------------------------------------
// Router Fallthrough
// -----------------------------------------------------------------------------

func TestExecutor_Unreachable(t *testing.T) {
	type expected struct {
		answer string
	}

	tests := []struct {
		name     string
		input    lessongraph.NodeName
		preset   string
		expected expected
	}{
		{
			name:     "unreachable sentinel keeps answer",
			input:    lessongraph.NodeUnreachable,
			preset:   "reviewed answer",
			expected: expected{answer: "reviewed answer"},
		},
		{
			name:     "unknown node sets generic answer",
			input:    lessongraph.NodeName("mystery"),
			expected: expected{answer: executor.UnreachableAnswer},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			graph := &scriptedGraph{
				route: func(*lessongraph.AgentState) lessongraph.NodeName { return tc.input },
				nodes: map[lessongraph.NodeName]func(*lessongraph.ExecutionContext){},
			}
			recorder := tt.NewRecordingHook()
			exec := executor.New(graph, executor.DefaultConfig()).RegisterHook(recorder)

			execCtx := exec.NewTask(context.Background(), "task")
			execCtx.State().FinalAnswer = tc.preset
			exec.Execute(execCtx)

			assert.Equal(t, tc.expected.answer, execCtx.State().FinalAnswer)
			assert.True(t, execCtx.State().Finished)
			assert.NoError(t, execCtx.State().Err)
			assert.Equal(t, lessongraph.TerminationUnreachable, execCtx.TerminationReason())
			require.Len(t, recorder.Errors(), 1)
			assert.ErrorIs(t, recorder.Errors()[0], lessongraph.ErrRouterUnreachable)
		})
	}
}
