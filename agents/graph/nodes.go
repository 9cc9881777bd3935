package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/memory"
	"github.com/rickchristie/lessongraph/toolloop"
)

// ----------------------------------------------------------------------------
// Planner
// ----------------------------------------------------------------------------

type plannerNode struct {
	agent *Agent
}

func (n *plannerNode) Name() lessongraph.NodeName { return lessongraph.NodePlanner }

// Run asks the planner client for a plan without tools. The plan is written only on
// success.
func (n *plannerNode) Run(execCtx *lessongraph.ExecutionContext) {
	state := execCtx.State()
	data := n.agent.promptData(state)
	data.MemorySummary = n.memorySummary(execCtx)

	system, err := ExecuteTemplate(n.agent.profile.Planner, data)
	if err != nil {
		fail(execCtx, fmt.Errorf("planner: render prompt: %w", err))
		return
	}

	plan, err := complete(execCtx, n.agent.clients.Planner, []lessongraph.Message{
		lessongraph.SystemMessage(system),
		lessongraph.UserMessage(state.UserInput()),
	})
	if err != nil {
		fail(execCtx, fmt.Errorf("planner: %w", err))
		return
	}
	state.Plan = plan
}

// memorySummary never fails the task: an unreadable store is reported and treated as
// empty.
func (n *plannerNode) memorySummary(execCtx *lessongraph.ExecutionContext) string {
	if n.agent.memory == nil {
		return ""
	}
	records, err := n.agent.memory.Recent(execCtx.Context(), n.agent.memoryItems)
	if err != nil {
		execCtx.FireError(lessongraph.ErrorEvent{Err: fmt.Errorf("planner: read memory: %w", err)})
		records = nil
	}
	return memory.Summarize(records, n.agent.memoryItems)
}

// ----------------------------------------------------------------------------
// Worker
// ----------------------------------------------------------------------------

type workerNode struct {
	agent *Agent
}

func (n *workerNode) Name() lessongraph.NodeName { return lessongraph.NodeWorker }

// Run seeds or extends the history, then runs the tool loop over it.
//
// The first entry seeds a system message with the plan. A retry entry adds the critic's
// reason instead and counts against the retry budget. Every entry repeats the user
// input so the last user turn is always the task.
func (n *workerNode) Run(execCtx *lessongraph.ExecutionContext) {
	state := execCtx.State()
	state.WorkerAttempts++

	data := n.agent.promptData(state)
	switch {
	case state.HistoryLen() == 0:
		system, err := ExecuteTemplate(n.agent.profile.Worker, data)
		if err != nil {
			fail(execCtx, fmt.Errorf("worker: render prompt: %w", err))
			return
		}
		state.AppendHistory(lessongraph.SystemMessage(system))
	case state.NeedRetry:
		state.RetryCount++
		data.Reason = state.CriticReason
		hint, err := ExecuteTemplate(n.agent.retryTmpl, data)
		if err != nil {
			fail(execCtx, fmt.Errorf("worker: render retry prompt: %w", err))
			return
		}
		state.AppendHistory(lessongraph.SystemMessage(hint))
	}
	state.AppendHistory(lessongraph.UserMessage(state.UserInput()))

	before := state.HistoryLen()
	result, err := toolloop.Run(
		execCtx,
		n.agent.clients.Worker,
		n.agent.registry,
		state.History(),
		n.agent.maxToolRounds,
	)
	if err != nil {
		fail(execCtx, fmt.Errorf("worker: %w", err))
		return
	}

	state.AppendHistory(result.History[before:]...)
	state.AppendToolLog(result.ToolLog...)

	answer := strings.TrimSpace(result.Final.Text)
	if answer == "" {
		fail(execCtx, fmt.Errorf("worker: %w", lessongraph.ErrEmptyAnswer))
		return
	}
	state.FinalAnswer = answer
	state.NeedRetry = false
	state.CriticReviewed = false
}

// ----------------------------------------------------------------------------
// Critic
// ----------------------------------------------------------------------------

type criticNode struct {
	agent *Agent
}

func (n *criticNode) Name() lessongraph.NodeName { return lessongraph.NodeCritic }

// Run reviews the current answer. The critic can only ever grant a retry while the
// budget lasts; every other outcome, including its own failure, finishes the task.
func (n *criticNode) Run(execCtx *lessongraph.ExecutionContext) {
	state := execCtx.State()
	state.CriticReviewed = true
	state.NeedRetry = false

	if state.FinalAnswer == "" {
		return
	}

	verdict, err := n.review(execCtx, state)
	if err != nil {
		// Fail open: an unavailable critic accepts the answer.
		execCtx.FireError(lessongraph.ErrorEvent{Err: fmt.Errorf("critic: %w", err)})
		state.Finished = true
		return
	}
	if verdict.Malformed {
		execCtx.FireError(lessongraph.ErrorEvent{Err: fmt.Errorf(
			"critic: %w: %q", lessongraph.ErrMalformedCriticOutput, firstLine(state.CriticReview),
		)})
	}

	state.CriticReason = verdict.Reason
	if verdict.Retry && state.CanRetry() {
		state.NeedRetry = true
		return
	}
	state.Finished = true
}

func (n *criticNode) review(
	execCtx *lessongraph.ExecutionContext,
	state *lessongraph.AgentState,
) (Verdict, error) {
	data := n.agent.promptData(state)
	data.Answer = state.FinalAnswer

	rubric, err := ExecuteTemplate(n.agent.profile.Critic, data)
	if err != nil {
		return Verdict{}, fmt.Errorf("render prompt: %w", err)
	}
	request, err := ExecuteTemplate(n.agent.reviewTmpl, data)
	if err != nil {
		return Verdict{}, fmt.Errorf("render review: %w", err)
	}

	text, err := complete(execCtx, n.agent.clients.Critic, []lessongraph.Message{
		lessongraph.SystemMessage(rubric),
		lessongraph.UserMessage(request),
	})
	if err != nil && !errors.Is(err, lessongraph.ErrEmptyAnswer) {
		return Verdict{}, err
	}
	state.CriticReview = text
	return ParseVerdict(text), nil
}

// ----------------------------------------------------------------------------
// Error
// ----------------------------------------------------------------------------

type errorNode struct{}

func (errorNode) Name() lessongraph.NodeName { return lessongraph.NodeError }

// Run turns the recorded error into the user-facing answer and finishes the task.
// A previous answer is replaced: it was never approved.
func (errorNode) Run(execCtx *lessongraph.ExecutionContext) {
	state := execCtx.State()
	state.FinalAnswer = FailureMessage(state.Err)
	state.NeedRetry = false
	state.Finished = true
}

// FailureMessage describes err for the end user and suggests what to do next.
func FailureMessage(err error) string {
	var remote *lessongraph.RemoteFailure
	var exceeded *lessongraph.ToolLoopExceededError
	switch {
	case err == nil:
		return "The task stopped unexpectedly. Please try again."
	case errors.As(err, &remote):
		return fmt.Sprintf(
			"The model service could not complete the request after %d attempt(s). "+
				"Please try again later. (%v)",
			remote.Attempts, remote.Err,
		)
	case errors.As(err, &exceeded):
		return fmt.Sprintf(
			"The task needed more than %d tool round(s) to finish. "+
				"Please simplify the request and try again.",
			exceeded.MaxRounds,
		)
	case errors.Is(err, lessongraph.ErrEmptyAnswer):
		return "The model returned an empty answer. Please rephrase the request and try again."
	default:
		return fmt.Sprintf("The task failed: %v. Please try again.", err)
	}
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// complete invokes a tool-less client and returns the trimmed answer text.
func complete(
	execCtx *lessongraph.ExecutionContext,
	client lessongraph.CompletionClient,
	messages []lessongraph.Message,
) (string, error) {
	if client == nil {
		return "", errors.New("completion client is not configured")
	}
	completion, err := client.Invoke(execCtx, messages, nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return "", lessongraph.ErrEmptyAnswer
	}
	return text, nil
}

func fail(execCtx *lessongraph.ExecutionContext, err error) {
	execCtx.State().Err = err
	execCtx.FireError(lessongraph.ErrorEvent{Err: err})
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
