// Package tt provides scripted fakes and recorders for tests.
package tt

import (
	"context"
	"sync"
	"time"

	"github.com/rickchristie/lessongraph"
)

// -----------------------------------------------------------------------------
// MockModel - implements lessongraph.Model
// -----------------------------------------------------------------------------

// MockModel is a configurable mock that implements lessongraph.Model.
// Responses and errors are consumed in call order. When the queue is exhausted it
// returns a final completion with the text "done".
type MockModel struct {
	mu        sync.Mutex
	name      string
	responses []*lessongraph.Completion
	errors    []error
	delay     time.Duration
	callCount int

	// CapturedRequests stores the request passed to each GenerateContent call.
	CapturedRequests []*lessongraph.CompletionRequest
}

// NewMockModel creates a new MockModel with the default name "test-model".
func NewMockModel() *MockModel {
	return &MockModel{name: "test-model"}
}

// WithName sets the model name.
func (m *MockModel) WithName(name string) *MockModel {
	m.name = name
	return m
}

// WithDelay makes every call wait d (or until ctx is done) before answering.
func (m *MockModel) WithDelay(d time.Duration) *MockModel {
	m.delay = d
	return m
}

// AddResponse queues a final text response with the specified token counts.
func (m *MockModel) AddResponse(text string, inputTokens, outputTokens int) *MockModel {
	return m.AddCompletion(&lessongraph.Completion{
		Text: text,
		Info: &lessongraph.GenerationInfo{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	})
}

// AddToolCalls queues a response that requests the given tool calls.
func (m *MockModel) AddToolCalls(calls ...lessongraph.ToolCallRequest) *MockModel {
	return m.AddCompletion(&lessongraph.Completion{ToolCalls: calls})
}

// AddCompletion queues a raw completion.
func (m *MockModel) AddCompletion(c *lessongraph.Completion) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, c)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// CallCount returns the number of times GenerateContent has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Name implements lessongraph.Model.
func (m *MockModel) Name() string {
	return m.name
}

// GenerateContent implements lessongraph.Model.
func (m *MockModel) GenerateContent(
	ctx context.Context,
	req *lessongraph.CompletionRequest,
) (*lessongraph.Completion, error) {
	m.mu.Lock()
	idx := m.callCount
	m.callCount++
	m.CapturedRequests = append(m.CapturedRequests, req)
	delay := m.delay
	var resp *lessongraph.Completion
	var err error
	if idx < len(m.errors) {
		resp, err = m.responses[idx], m.errors[idx]
	} else {
		resp = &lessongraph.Completion{Text: "done"}
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// -----------------------------------------------------------------------------
// MockClient - implements lessongraph.CompletionClient
// -----------------------------------------------------------------------------

// Invocation is one captured MockClient call.
type Invocation struct {
	History []lessongraph.Message
	Tools   []lessongraph.ToolDefinition
}

// MockClient is a scripted lessongraph.CompletionClient. It skips the transport policy
// entirely, so node and loop tests can script exact completions and failures.
type MockClient struct {
	mu          sync.Mutex
	responses   []*lessongraph.Completion
	errors      []error
	fallback    func(history []lessongraph.Message) (*lessongraph.Completion, error)
	invocations []Invocation
}

// NewMockClient creates an empty MockClient. Without queued responses or a fallback
// it answers "done".
func NewMockClient() *MockClient {
	return &MockClient{}
}

// AddText queues a final text completion.
func (c *MockClient) AddText(text string) *MockClient {
	return c.add(&lessongraph.Completion{Text: text}, nil)
}

// AddToolCalls queues a completion that requests the given tool calls.
func (c *MockClient) AddToolCalls(calls ...lessongraph.ToolCallRequest) *MockClient {
	return c.add(&lessongraph.Completion{ToolCalls: calls}, nil)
}

// AddError queues an error.
func (c *MockClient) AddError(err error) *MockClient {
	return c.add(nil, err)
}

// WithFallback sets the responder used once the queue is exhausted.
func (c *MockClient) WithFallback(
	fn func(history []lessongraph.Message) (*lessongraph.Completion, error),
) *MockClient {
	c.fallback = fn
	return c
}

func (c *MockClient) add(resp *lessongraph.Completion, err error) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, resp)
	c.errors = append(c.errors, err)
	return c
}

// Invocations returns the captured calls.
func (c *MockClient) Invocations() []Invocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Invocation, len(c.invocations))
	copy(out, c.invocations)
	return out
}

// CallCount returns the number of Invoke calls.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invocations)
}

// Invoke implements lessongraph.CompletionClient.
func (c *MockClient) Invoke(
	execCtx *lessongraph.ExecutionContext,
	history []lessongraph.Message,
	tools []lessongraph.ToolDefinition,
) (*lessongraph.Completion, error) {
	c.mu.Lock()
	idx := len(c.invocations)
	c.invocations = append(c.invocations, Invocation{
		History: lessongraph.CloneMessages(history),
		Tools:   tools,
	})
	fallback := c.fallback
	var resp *lessongraph.Completion
	var err error
	queued := idx < len(c.responses)
	if queued {
		resp, err = c.responses[idx], c.errors[idx]
	}
	c.mu.Unlock()

	if ctxErr := execCtx.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if queued {
		return resp, err
	}
	if fallback != nil {
		return fallback(history)
	}
	return &lessongraph.Completion{Text: "done"}, nil
}

// ToolCall builds a ToolCallRequest.
func ToolCall(id, name string, args map[string]any) lessongraph.ToolCallRequest {
	return lessongraph.ToolCallRequest{ID: id, Name: name, Arguments: args}
}

// Compile-time checks.
var (
	_ lessongraph.Model            = (*MockModel)(nil)
	_ lessongraph.CompletionClient = (*MockClient)(nil)
)
