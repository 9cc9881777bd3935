package lessongraph

// TerminationReason describes why the executor stopped.
type TerminationReason string

const (
	// TerminationSuccess means the router reached End without an error in the state.
	TerminationSuccess TerminationReason = "success"

	// TerminationError means the Error node produced the final answer.
	TerminationError TerminationReason = "error"

	// TerminationStepLimit means the step ceiling was reached before End.
	TerminationStepLimit TerminationReason = "step_limit"

	// TerminationContextCanceled means the caller canceled the task.
	TerminationContextCanceled TerminationReason = "context_canceled"

	// TerminationLimitExceeded means a stats Limit was exceeded.
	TerminationLimitExceeded TerminationReason = "limit_exceeded"

	// TerminationUnreachable means the router fell through every rule.
	TerminationUnreachable TerminationReason = "router_unreachable"
)
