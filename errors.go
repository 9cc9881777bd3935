package lessongraph

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteFailure matches any completion client failure that survived transport retries.
	ErrRemoteFailure = errors.New("remote model call failed")

	// ErrTransient marks a model error as safe to retry (timeout, rate limit, 5xx,
	// connection reset). Provider adapters wrap it.
	ErrTransient = errors.New("transient transport failure")

	// ErrToolNotFound is reported when the model requests an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArguments is reported when a tool call's arguments are not a JSON object.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrToolHandler wraps an error returned or panicked by a tool handler.
	ErrToolHandler = errors.New("tool handler failed")

	// ErrToolLoopExceeded matches [*ToolLoopExceededError].
	ErrToolLoopExceeded = errors.New("tool loop exceeded max rounds")

	// ErrEmptyAnswer is reported when the Planner or Worker model returns blank text.
	ErrEmptyAnswer = errors.New("model returned an empty answer")

	// ErrMalformedCriticOutput is reported when the critic's first line is not a binary flag.
	ErrMalformedCriticOutput = errors.New("malformed critic output")

	// ErrRouterUnreachable is reported when the router falls through every rule.
	ErrRouterUnreachable = errors.New("router reached unreachable state")

	// ErrDuplicateTool is returned when registering a tool name twice.
	ErrDuplicateTool = errors.New("duplicate tool name")

	// ErrTaskCanceled is stored in the state when the caller cancels a task.
	ErrTaskCanceled = errors.New("task canceled")

	// ErrLimitExceeded is stored in the state when a configured stats limit is exceeded.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// RemoteFailure is returned by a CompletionClient once it has exhausted its attempts.
type RemoteFailure struct {
	// Model is the model identifier that failed.
	Model string

	// Attempts is the number of attempts made (1 + retries).
	Attempts int

	// Err is the error from the last attempt.
	Err error
}

func (e *RemoteFailure) Error() string {
	return fmt.Sprintf(
		"remote model call to %q failed after %d attempt(s): %v",
		e.Model, e.Attempts, e.Err,
	)
}

// Unwrap lets errors.Is match both ErrRemoteFailure and the underlying cause.
func (e *RemoteFailure) Unwrap() []error {
	return []error{ErrRemoteFailure, e.Err}
}

// ToolLoopExceededError is returned when the tool-call loop used every round without
// producing a final completion.
type ToolLoopExceededError struct {
	MaxRounds int
}

func (e *ToolLoopExceededError) Error() string {
	return fmt.Sprintf("tool loop exceeded %d round(s) without a final answer", e.MaxRounds)
}

func (e *ToolLoopExceededError) Unwrap() error {
	return ErrToolLoopExceeded
}
