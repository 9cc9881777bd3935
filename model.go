package lessongraph

import (
	"context"
	"time"
)

// Model is a provider adapter: one request in, one completion out.
//
// Implementations translate Messages and ToolDefinitions into the provider's wire
// types and normalize the response. They do not retry, fire hooks, or apply timeouts;
// the CompletionClient owns those concerns.
//
// Transient failures (timeouts, rate limits, 5xx, connection resets) should be reported
// as errors that match [ErrTransient] via errors.Is, so the client knows to retry them.
type Model interface {
	// Name returns the model identifier used in hooks and stats.
	Name() string

	// GenerateContent performs one completion request.
	GenerateContent(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// CompletionRequest is the normalized input to a Model.
type CompletionRequest struct {
	// Messages is the conversation so far. Models must not modify it.
	Messages []Message

	// Tools are offered to the model. Empty means pure chat.
	Tools []ToolDefinition

	// Temperature controls sampling. Zero is a valid value (deterministic).
	Temperature float64

	// MaxTokens caps the response length. Zero lets the adapter choose.
	MaxTokens int
}

// CompletionClient wraps a Model with the transport policy (timeout, bounded retries,
// temperature) and observability. Node functions only ever talk to a CompletionClient.
//
// Invoke never mutates history. Callers append the returned Completion to the history
// as an assistant message themselves. After retries are exhausted the returned error
// is a [*RemoteFailure].
//
// A nil execCtx is allowed and means "no hooks, background context".
type CompletionClient interface {
	Invoke(execCtx *ExecutionContext, history []Message, tools []ToolDefinition) (*Completion, error)
}

// Completion is the result of one model invocation.
type Completion struct {
	// Text is the textual content. May be empty or advisory when ToolCalls is non-empty.
	Text string

	// ToolCalls are the tools the model wants executed. Any tool call makes the
	// completion non-final.
	ToolCalls []ToolCallRequest

	// StopReason is the provider's stop reason, when available.
	StopReason string

	// Info contains generation metadata including normalized token counts.
	Info *GenerationInfo
}

// IsFinal reports whether the completion carries no tool-call requests.
func (c *Completion) IsFinal() bool {
	return c == nil || len(c.ToolCalls) == 0
}

// Message converts the completion into the assistant message that should be appended
// to the history.
func (c *Completion) Message() Message {
	if c == nil {
		return AssistantMessage("", nil)
	}
	return AssistantMessage(c.Text, c.ToolCalls)
}

// GenerationInfo contains metadata about the generation including normalized token counts.
type GenerationInfo struct {
	// InputTokens is the number of input/prompt tokens used.
	// This is normalized across providers:
	//   - OpenAI: PromptTokens / prompt_tokens
	//   - Anthropic: InputTokens / input_tokens
	//   - Google: input_tokens / PromptTokens
	InputTokens int

	// OutputTokens is the number of output/completion tokens generated.
	// This is normalized across providers:
	//   - OpenAI: CompletionTokens / completion_tokens
	//   - Anthropic: OutputTokens / output_tokens
	//   - Google: output_tokens / CompletionTokens
	OutputTokens int

	// TotalTokens is the total token count. Computed when the provider omits it.
	TotalTokens int

	// CachedInputTokens is the number of input tokens served from cache.
	CachedInputTokens int

	// RawGenerationInfo contains the original provider-specific metadata, when the
	// provider exposes it as a map.
	RawGenerationInfo map[string]any

	// Duration is how long the generation took.
	Duration time.Duration
}
