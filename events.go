package lessongraph

import "time"

// -----------------------------------------------------------------------------
// Hook Event Interface
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// -----------------------------------------------------------------------------
// Executor Events
// -----------------------------------------------------------------------------

// BeforeExecutionEvent is emitted once before the first node runs.
type BeforeExecutionEvent struct {
	TaskID    string
	UserInput string
}

func (BeforeExecutionEvent) hookEvent() {}

// AfterExecutionEvent is emitted once after the driver stops.
type AfterExecutionEvent struct {
	// TerminationReason indicates why execution ended.
	TerminationReason TerminationReason

	// Steps is the number of nodes that ran.
	Steps int

	// Error is the state's error, if any.
	Error error

	// Duration is the wall time of the whole task.
	Duration time.Duration
}

func (AfterExecutionEvent) hookEvent() {}

// BeforeNodeEvent is emitted before each node runs.
type BeforeNodeEvent struct {
	// Step is the 1-indexed step number.
	Step int

	Node NodeName
}

func (BeforeNodeEvent) hookEvent() {}

// AfterNodeEvent is emitted after each node runs.
type AfterNodeEvent struct {
	Step int
	Node NodeName

	// Duration is how long the node took.
	Duration time.Duration

	// Error is the state's error after the node ran (nil if none).
	Error error
}

func (AfterNodeEvent) hookEvent() {}

// ErrorEvent is emitted when something goes wrong that the caller should know about,
// including contained failures that do not abort the task.
type ErrorEvent struct {
	// Step is the step where the error occurred (0 if before the first step).
	Step int

	// Node is the node that observed the error, if any.
	Node NodeName

	// Err is the error that occurred.
	Err error
}

func (ErrorEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Model Call Events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent is emitted before each model attempt.
type BeforeModelCallEvent struct {
	// Model is the model identifier.
	Model string

	// Attempt is the 1-indexed attempt number for this invocation.
	Attempt int

	// Messages are the messages being sent to the model.
	Messages []Message

	// ToolCount is the number of tools offered.
	ToolCount int
}

func (BeforeModelCallEvent) hookEvent() {}

// AfterModelCallEvent is emitted after each model attempt completes.
type AfterModelCallEvent struct {
	Model   string
	Attempt int

	// Messages are the messages that were sent to the model.
	Messages []Message

	// Response is nil when Error is set.
	Response *Completion

	// Duration is how long the attempt took.
	Duration time.Duration

	// Error is any error that occurred (nil if successful).
	Error error

	// WillRetry is true when the client is going to try again after this failure.
	WillRetry bool
}

func (AfterModelCallEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Tool Call Events
// -----------------------------------------------------------------------------

// BeforeToolCallEvent is emitted before each tool call execution.
// Hooks can modify Args to change the input before execution.
type BeforeToolCallEvent struct {
	// ToolName is the name of the tool being called.
	ToolName string

	// CallID is the model-assigned id of the request.
	CallID string

	// Args contains the arguments that will be passed to the tool.
	// Hooks can modify this map to change the arguments.
	Args map[string]any
}

func (BeforeToolCallEvent) hookEvent() {}

// AfterToolCallEvent is emitted after each tool call execution.
type AfterToolCallEvent struct {
	ToolName string
	CallID   string

	// Args contains the arguments that were passed to the tool.
	Args map[string]any

	// Output is the text sent back to the model, including synthesized failure text.
	Output string

	// Duration is how long the tool call took.
	Duration time.Duration

	// Error is any error that occurred (nil if successful).
	Error error
}

func (AfterToolCallEvent) hookEvent() {}
