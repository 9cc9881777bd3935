package lessongraph

// DefaultMaxRetries is the number of critic-requested retries a task allows when the
// caller does not configure one.
const DefaultMaxRetries = 2

// AgentState is the single mutable record threaded through the graph.
//
// It is created once per task by the executor, mutated in place by node functions and
// read by the router. One task runs on one goroutine, so AgentState is not
// synchronized.
type AgentState struct {
	// TaskID identifies the task in logs, hooks and memory records.
	TaskID string

	userInput string
	history   []Message

	// Plan is empty until the Planner succeeds.
	Plan string

	// ToolLog lists executed tool calls across all Worker attempts, in order.
	ToolLog []ToolLogEntry

	// FinalAnswer is the latest Worker answer, or the Error node's user-facing text.
	FinalAnswer string

	// Finished is set when the task must not be routed back into the graph.
	Finished bool

	// Err is set by a failing node. When set the router always yields the Error node.
	Err error

	// NeedRetry asks the router to run the Worker again.
	NeedRetry bool

	// CriticReviewed is false while the current FinalAnswer has not been reviewed.
	CriticReviewed bool

	// CriticReason holds the critic's rationale lines (everything after the flag line).
	CriticReason string

	// CriticReview holds the critic's full response, kept for memory and export.
	CriticReview string

	// WorkerAttempts counts every Worker entry.
	WorkerAttempts int

	// RetryCount counts Worker entries that were triggered by a critic retry.
	RetryCount int

	// MaxRetries bounds RetryCount. Constant for the task.
	MaxRetries int
}

// NewAgentState creates the zero state for one task. A negative maxRetries becomes 0.
func NewAgentState(taskID, userInput string, maxRetries int) *AgentState {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &AgentState{
		TaskID:     taskID,
		userInput:  userInput,
		MaxRetries: maxRetries,
	}
}

// UserInput returns the task input. It cannot change once the state exists.
func (s *AgentState) UserInput() string {
	return s.userInput
}

// History returns a copy of the conversation history.
func (s *AgentState) History() []Message {
	return CloneMessages(s.history)
}

// HistoryLen returns the number of messages in the history.
func (s *AgentState) HistoryLen() int {
	return len(s.history)
}

// AppendHistory appends messages. History is append-only within a task.
func (s *AgentState) AppendHistory(msgs ...Message) {
	s.history = append(s.history, msgs...)
}

// AppendToolLog appends entries to the tool log.
func (s *AgentState) AppendToolLog(entries ...ToolLogEntry) {
	s.ToolLog = append(s.ToolLog, entries...)
}

// HasError reports whether a node recorded a failure.
func (s *AgentState) HasError() bool {
	return s.Err != nil
}

// CanRetry reports whether the critic may still request another Worker attempt.
func (s *AgentState) CanRetry() bool {
	return s.RetryCount < s.MaxRetries
}
