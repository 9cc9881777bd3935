package lessongraph

// StatKey names a counter or gauge in ExecutionStats.
type StatKey string

// Standard key prefix for all lessongraph keys.
// Users should use their own prefix (e.g., "myapp:") for custom metrics
// to avoid collisions with the standard keys.
const KeyPrefix = "lessongraph:"

// Step tracking.
// This key is protected: attempts to modify it via IncrCounter are silently ignored.
// Only the executor advances it.
const KeySteps StatKey = "lessongraph:steps"

// Node visit keys.
const KeyNodeVisitsFor StatKey = "lessongraph:node_visits:" // + node name

// Model call keys.
const (
	KeyModelCalls       StatKey = "lessongraph:model_calls"
	KeyModelRetries     StatKey = "lessongraph:model_retries"
	KeyModelErrors      StatKey = "lessongraph:model_errors"
	KeyInputTokens      StatKey = "lessongraph:input_tokens"
	KeyInputTokensFor   StatKey = "lessongraph:input_tokens:" // + model name
	KeyOutputTokens     StatKey = "lessongraph:output_tokens"
	KeyOutputTokensFor  StatKey = "lessongraph:output_tokens:" // + model name
)

// Tool call keys.
const (
	KeyToolRounds     StatKey = "lessongraph:tool_rounds"
	KeyToolCalls      StatKey = "lessongraph:tool_calls"
	KeyToolCallsFor   StatKey = "lessongraph:tool_calls:" // + tool name
	KeyToolCallErrors StatKey = "lessongraph:tool_call_errors"
)

// For appends a suffix (model, tool or node name) to a prefix key.
func (k StatKey) For(name string) StatKey {
	return k + StatKey(name)
}

// protectedKeys contains keys that cannot be modified by user code.
var protectedKeys = map[StatKey]bool{
	KeySteps: true,
}

// isProtectedKey returns true if the key is protected from user modification.
func isProtectedKey(key StatKey) bool {
	return protectedKeys[key]
}
