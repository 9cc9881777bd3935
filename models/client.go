package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/lessongraph"
)

const (
	// DefaultTimeout bounds a single model attempt.
	DefaultTimeout = 20 * time.Second

	// DefaultMaxTransportRetries is the number of extra attempts after a transient
	// failure. It is also the ceiling: larger values are capped.
	DefaultMaxTransportRetries = 2

	// DefaultBackoff is the wait before the first retry. It doubles for each retry.
	DefaultBackoff = 500 * time.Millisecond
)

// ClientOptions configures the transport policy of a Client.
type ClientOptions struct {
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// MaxTransportRetries is the number of retries after transient failures.
	// Zero means DefaultMaxTransportRetries, a negative value disables retries and
	// values above DefaultMaxTransportRetries are capped.
	MaxTransportRetries int

	// Temperature is sent with every request. Zero is a valid temperature.
	Temperature float64

	// MaxTokens caps the response length. Zero lets the provider choose.
	MaxTokens int

	// Backoff is the wait before the first retry. Zero means DefaultBackoff.
	Backoff time.Duration
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	switch {
	case o.MaxTransportRetries == 0:
		o.MaxTransportRetries = DefaultMaxTransportRetries
	case o.MaxTransportRetries < 0:
		o.MaxTransportRetries = 0
	case o.MaxTransportRetries > DefaultMaxTransportRetries:
		o.MaxTransportRetries = DefaultMaxTransportRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	return o
}

// Client is the CompletionClient used by node functions. It wraps a provider Model
// with the transport policy:
//
//   - every attempt runs under its own timeout
//   - transient failures (see IsTransient) are retried with exponential backoff
//   - other failures and caller cancellation are never retried
//   - once attempts are exhausted the error is a *lessongraph.RemoteFailure
//
// Each attempt fires BeforeModelCall/AfterModelCall hooks and updates the model call
// and token stats of the ExecutionContext.
//
// Client holds no per-call state and is safe for concurrent use.
type Client struct {
	model Model
	opts  ClientOptions
}

// Model is the provider adapter wrapped by a Client.
type Model = lessongraph.Model

// NewClient creates a Client around model.
func NewClient(model Model, opts ClientOptions) *Client {
	return &Client{model: model, opts: opts.withDefaults()}
}

// Options returns the effective options after defaults were applied.
func (c *Client) Options() ClientOptions {
	return c.opts
}

// Model returns the wrapped provider model.
func (c *Client) Model() Model {
	return c.model
}

// Invoke implements lessongraph.CompletionClient.
func (c *Client) Invoke(
	execCtx *lessongraph.ExecutionContext,
	history []lessongraph.Message,
	tools []lessongraph.ToolDefinition,
) (*lessongraph.Completion, error) {
	ctx := execCtx.Context()
	stats := execCtx.Stats()
	modelName := c.model.Name()

	req := &lessongraph.CompletionRequest{
		Messages:    lessongraph.CloneMessages(history),
		Tools:       tools,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}

	maxAttempts := c.opts.MaxTransportRetries + 1
	backoff := c.opts.Backoff

	for attempt := 1; ; attempt++ {
		execCtx.FireBeforeModelCall(lessongraph.BeforeModelCallEvent{
			Model:     modelName,
			Attempt:   attempt,
			Messages:  req.Messages,
			ToolCount: len(tools),
		})
		stats.IncrCounter(lessongraph.KeyModelCalls, 1)

		response, duration, err := c.attempt(ctx, req)

		if err == nil {
			if response.Info == nil {
				response.Info = &lessongraph.GenerationInfo{}
			}
			if response.Info.Duration == 0 {
				response.Info.Duration = duration
			}
			recordTokens(stats, modelName, response.Info)
			execCtx.FireAfterModelCall(lessongraph.AfterModelCallEvent{
				Model:    modelName,
				Attempt:  attempt,
				Messages: req.Messages,
				Response: response,
				Duration: duration,
			})
			return response, nil
		}

		willRetry := attempt < maxAttempts && ctx.Err() == nil && IsTransient(err)

		stats.IncrCounter(lessongraph.KeyModelErrors, 1)
		execCtx.FireAfterModelCall(lessongraph.AfterModelCallEvent{
			Model:     modelName,
			Attempt:   attempt,
			Messages:  req.Messages,
			Duration:  duration,
			Error:     err,
			WillRetry: willRetry,
		})

		if !willRetry {
			return nil, &lessongraph.RemoteFailure{Model: modelName, Attempts: attempt, Err: err}
		}

		stats.IncrCounter(lessongraph.KeyModelRetries, 1)
		select {
		case <-ctx.Done():
			return nil, &lessongraph.RemoteFailure{
				Model:    modelName,
				Attempts: attempt,
				Err:      fmt.Errorf("%w (while waiting to retry: %v)", ctx.Err(), err),
			}
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// attempt runs one GenerateContent call under the per-attempt timeout.
func (c *Client) attempt(
	ctx context.Context,
	req *lessongraph.CompletionRequest,
) (*lessongraph.Completion, time.Duration, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	startTime := time.Now()
	response, err := c.model.GenerateContent(attemptCtx, req)
	duration := time.Since(startTime)

	if err == nil && response == nil {
		err = errors.New("model returned no completion")
	}
	if err != nil {
		// Only our own deadline is a transient timeout. Caller cancellation is final.
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w: attempt timed out after %s: %w",
				lessongraph.ErrTransient, c.opts.Timeout, err)
		}
		return nil, duration, err
	}
	return response, duration, nil
}

func recordTokens(stats *lessongraph.ExecutionStats, model string, info *lessongraph.GenerationInfo) {
	if info.InputTokens > 0 {
		stats.IncrCounter(lessongraph.KeyInputTokens, int64(info.InputTokens))
		stats.IncrCounter(lessongraph.KeyInputTokensFor.For(model), int64(info.InputTokens))
	}
	if info.OutputTokens > 0 {
		stats.IncrCounter(lessongraph.KeyOutputTokens, int64(info.OutputTokens))
		stats.IncrCounter(lessongraph.KeyOutputTokensFor.For(model), int64(info.OutputTokens))
	}
}

// Compile-time check that Client implements lessongraph.CompletionClient.
var _ lessongraph.CompletionClient = (*Client)(nil)
