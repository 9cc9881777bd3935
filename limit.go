package lessongraph

// LimitType specifies how to match keys for limit checking.
type LimitType string

const (
	// LimitExactKey matches an exact key.
	// Use for specific counters like KeyToolCalls or KeyInputTokens.
	LimitExactKey LimitType = "exact"

	// LimitKeyPrefix matches any key with the given prefix.
	// Use for limits across all models/tools (e.g., KeyToolCallsFor matches all tools).
	LimitKeyPrefix LimitType = "prefix"
)

// Limit defines a threshold that cancels the task.
//
// Limits are checked automatically whenever stats are updated. When any limit is
// exceeded, the ExecutionContext's context is canceled: in-flight model calls abort
// and the executor stops at the top of its next step with [TerminationLimitExceeded].
//
// # Exact Key Limits
//
//	// Stop after 100k input tokens
//	{Type: LimitExactKey, Key: KeyInputTokens, MaxValue: 100000}
//
// # Prefix Limits
//
//	// Stop if ANY tool is called more than 20 times
//	{Type: LimitKeyPrefix, Key: KeyToolCallsFor, MaxValue: 20}
//
// The step ceiling is not a Limit: it is enforced by the executor's MaxSteps and
// produces a user-facing answer rather than a cancellation.
type Limit struct {
	// Type specifies how to match keys (exact or prefix).
	Type LimitType

	// Key is the exact key or prefix to match.
	Key StatKey

	// MaxValue is the threshold. The task stops when a value exceeds it
	// (currentValue > MaxValue, not >=).
	MaxValue int64
}

// DefaultLimits returns limits that guard against runaway tool use.
//
// With the default tool rounds and retries a task performs far fewer tool calls, so
// these only trip when something is wrong:
//   - 60 tool calls in total
//   - 20 calls to any single tool
func DefaultLimits() []Limit {
	return []Limit{
		{Type: LimitExactKey, Key: KeyToolCalls, MaxValue: 60},
		{Type: LimitKeyPrefix, Key: KeyToolCallsFor, MaxValue: 20},
	}
}
