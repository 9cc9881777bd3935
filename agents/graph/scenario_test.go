package graph_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/agents/graph"
	"github.com/rickchristie/lessongraph/executor"
	"github.com/rickchristie/lessongraph/internal/tt"
	"github.com/rickchristie/lessongraph/models"
	"github.com/rickchristie/lessongraph/schema"
	"github.com/rickchristie/lessongraph/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func calculatorRegistry() *toolchain.Registry {
	return toolchain.NewRegistry().MustRegister(lessongraph.ToolDefinition{
		Name:        "calculator",
		Description: "Evaluate arithmetic",
		Parameters: schema.Object(map[string]*schema.Property{
			"expression": schema.String("Expression"),
		}, "expression"),
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			if args["expression"] == "2+2" {
				return "4", nil
			}
			return "", errors.New("unsupported expression")
		},
	})
}

type harness struct {
	planner *tt.MockClient
	worker  *tt.MockClient
	critic  *tt.MockClient
	hook    *tt.RecordingHook
	exec    *executor.Executor
}

func newHarness(maxRetries int) *harness {
	h := &harness{
		planner: tt.NewMockClient(),
		worker:  tt.NewMockClient(),
		critic:  tt.NewMockClient(),
		hook:    tt.NewRecordingHook(),
	}
	agent := graph.New(graph.Clients{
		Planner: h.planner,
		Worker:  h.worker,
		Critic:  h.critic,
	}, calculatorRegistry())

	config := executor.DefaultConfig()
	config.MaxRetries = maxRetries
	h.exec = executor.New(agent, config).RegisterHook(h.hook)
	return h
}

func (h *harness) run(input string) *lessongraph.ExecutionContext {
	execCtx := h.exec.NewTask(context.Background(), input)
	h.exec.Execute(execCtx)
	return execCtx
}

func always(text string) func([]lessongraph.Message) (*lessongraph.Completion, error) {
	return func([]lessongraph.Message) (*lessongraph.Completion, error) {
		return &lessongraph.Completion{Text: text}, nil
	}
}

// -----------------------------------------------------------------------------
// Scenarios
// -----------------------------------------------------------------------------

func TestScenario_CalculatorTask(t *testing.T) {
	h := newHarness(2)
	h.planner.AddText("1. Use the calculator on 2+2.")
	h.worker.
		AddToolCalls(tt.ToolCall("c1", "calculator", map[string]any{"expression": "2+2"})).
		AddText("2+2 equals 4.")
	h.critic.AddText("0\nCorrect.")

	execCtx := h.run("2+2 calculator task")
	state := execCtx.State()

	assert.True(t, state.Finished)
	assert.NoError(t, state.Err)
	assert.Equal(t, "2+2 equals 4.", state.FinalAnswer)
	assert.Equal(t, []lessongraph.ToolLogEntry{
		{ToolName: "calculator", Arguments: map[string]any{"expression": "2+2"}, Result: "4"},
	}, state.ToolLog)
	assert.Equal(t, []lessongraph.NodeName{
		lessongraph.NodePlanner, lessongraph.NodeWorker, lessongraph.NodeCritic,
	}, h.hook.Nodes())
	assert.Equal(t, lessongraph.TerminationSuccess, execCtx.TerminationReason())
	assert.Equal(t, 2, h.worker.CallCount())
}

func TestScenario_UnknownTool(t *testing.T) {
	h := newHarness(2)
	h.planner.AddText("plan")
	h.worker.
		AddToolCalls(tt.ToolCall("c1", "nonexistent", nil)).
		AddText("I answered without the tool.")
	h.critic.AddText("0")

	execCtx := h.run("task")
	state := execCtx.State()

	assert.NoError(t, state.Err)
	assert.Equal(t, "I answered without the tool.", state.FinalAnswer)
	require.Len(t, state.ToolLog, 1)
	assert.Contains(t, state.ToolLog[0].Result, `tool "nonexistent" was not found`)

	second := h.worker.Invocations()[1].History
	last := second[len(second)-1]
	assert.Equal(t, lessongraph.RoleTool, last.Role)
	assert.Equal(t, "c1", last.ToolCallID)
	require.NotEmpty(t, h.hook.Errors())
	assert.ErrorIs(t, h.hook.Errors()[0], lessongraph.ErrToolNotFound)
}

func TestScenario_CriticRetryThenAccept(t *testing.T) {
	h := newHarness(2)
	h.planner.AddText("plan")
	h.worker.AddText("first draft").AddText("second draft")
	h.critic.AddText("1\nAdd a slide outline.").AddText("0\nGood.")

	execCtx := h.run("Design a lesson")
	state := execCtx.State()

	assert.True(t, state.Finished)
	assert.False(t, state.NeedRetry)
	assert.Equal(t, "second draft", state.FinalAnswer)
	assert.Equal(t, 2, state.WorkerAttempts)
	assert.Equal(t, 1, state.RetryCount)
	assert.Equal(t, 2, h.critic.CallCount())
	assert.Equal(t, "Good.", state.CriticReason)
	assert.Equal(t, []lessongraph.NodeName{
		lessongraph.NodePlanner,
		lessongraph.NodeWorker, lessongraph.NodeCritic,
		lessongraph.NodeWorker, lessongraph.NodeCritic,
	}, h.hook.Nodes())

	retryHistory := h.worker.Invocations()[1].History
	assert.Contains(t, retryHistory[len(retryHistory)-2].Text, "Add a slide outline.")
	assert.Equal(t, lessongraph.UserMessage("Design a lesson"), retryHistory[len(retryHistory)-1])
}

func TestScenario_RetryBudgetExhausted(t *testing.T) {
	h := newHarness(2)
	h.planner.AddText("plan")
	h.worker.WithFallback(always("draft"))
	h.critic.WithFallback(always("1\nStill not good."))

	execCtx := h.run("task")
	state := execCtx.State()

	assert.Equal(t, 3, state.WorkerAttempts)
	assert.Equal(t, 2, state.RetryCount)
	assert.Equal(t, 3, h.critic.CallCount())
	assert.True(t, state.Finished)
	assert.False(t, state.NeedRetry)
	assert.Equal(t, "draft", state.FinalAnswer)
	assert.Equal(t, 7, execCtx.Step())
	assert.Equal(t, lessongraph.TerminationSuccess, execCtx.TerminationReason())
}

func TestScenario_PlannerRemoteFailure(t *testing.T) {
	model := tt.NewMockModel()
	for i := 0; i < 3; i++ {
		model.AddError(fmt.Errorf("%w: 503 service unavailable", lessongraph.ErrTransient))
	}
	worker := tt.NewMockClient()
	critic := tt.NewMockClient()
	hook := tt.NewRecordingHook()
	agent := graph.New(graph.Clients{
		Planner: models.NewClient(model, models.ClientOptions{Backoff: time.Millisecond}),
		Worker:  worker,
		Critic:  critic,
	}, nil)
	exec := executor.New(agent, executor.DefaultConfig()).RegisterHook(hook)

	execCtx := exec.NewTask(context.Background(), "task")
	exec.Execute(execCtx)
	state := execCtx.State()

	var remote *lessongraph.RemoteFailure
	require.ErrorAs(t, state.Err, &remote)
	assert.Equal(t, 3, remote.Attempts)
	assert.Equal(t, 3, model.CallCount())
	assert.Empty(t, state.Plan)
	assert.NotEmpty(t, state.FinalAnswer)
	assert.True(t, state.Finished)
	assert.Equal(t, []lessongraph.NodeName{lessongraph.NodePlanner, lessongraph.NodeError}, hook.Nodes())
	assert.Equal(t, 0, worker.CallCount())
	assert.Equal(t, 0, critic.CallCount())
	assert.Equal(t, lessongraph.TerminationError, execCtx.TerminationReason())
}

// -----------------------------------------------------------------------------
// Properties
// -----------------------------------------------------------------------------

func TestProperty_WorkerEntriesBoundedByRetries(t *testing.T) {
	for _, maxRetries := range []int{0, 1, 2, 3} {
		t.Run(fmt.Sprintf("max_retries_%d", maxRetries), func(t *testing.T) {
			h := newHarness(maxRetries)
			h.planner.AddText("plan")
			h.worker.WithFallback(always("draft"))
			h.critic.WithFallback(always("1"))

			execCtx := h.run("task")

			workerEntries := 0
			for _, node := range h.hook.Nodes() {
				if node == lessongraph.NodeWorker {
					workerEntries++
				}
			}
			assert.Equal(t, maxRetries+1, workerEntries)
			assert.Equal(t, maxRetries+1, execCtx.State().WorkerAttempts)
			assert.True(t, execCtx.State().Finished)
		})
	}
}

// historyProbe records the history length and user input after every node.
type historyProbe struct {
	lengths []int
	inputs  []string
}

func (p *historyProbe) OnAfterNode(
	_ context.Context, execCtx *lessongraph.ExecutionContext, _ lessongraph.AfterNodeEvent,
) {
	p.lengths = append(p.lengths, execCtx.State().HistoryLen())
	p.inputs = append(p.inputs, execCtx.State().UserInput())
}

func TestProperty_HistoryMonotonicAndInputFixed(t *testing.T) {
	h := newHarness(2)
	probe := &historyProbe{}
	h.exec.RegisterHook(probe)
	h.planner.AddText("plan")
	h.worker.
		AddToolCalls(tt.ToolCall("c1", "calculator", map[string]any{"expression": "2+2"})).
		AddText("first").
		AddText("second")
	h.critic.AddText("1\nmore detail").AddText("0")

	h.run("2+2 calculator task")

	require.Len(t, probe.lengths, 5)
	for i := 1; i < len(probe.lengths); i++ {
		assert.GreaterOrEqual(t, probe.lengths[i], probe.lengths[i-1])
	}
	for _, input := range probe.inputs {
		assert.Equal(t, "2+2 calculator task", input)
	}
}
