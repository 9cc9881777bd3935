package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/schema"
)

const (
	// DefaultAnthropicModel is the model used when none is configured.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	// DefaultAnthropicMaxTokens is sent when the request does not set MaxTokens.
	// The Messages API requires the field.
	DefaultAnthropicMaxTokens = 4096
)

// Anthropic is a lessongraph.Model backed by the official anthropic-sdk-go Messages API.
//
// System messages are hoisted into the request's system prompt. Tool results become
// user messages with tool_result blocks, and consecutive results are merged into one
// user turn because the API requires alternating roles.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

// NewAnthropic creates an Anthropic model. Extra request options are applied after
// the defaults. SDK-level retries are disabled: the Client owns the retry policy.
func NewAnthropic(apiKey, model string, opts ...option.RequestOption) *Anthropic {
	if model == "" {
		model = DefaultAnthropicModel
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	client := anthropic.NewClient(append(reqOpts, opts...)...)
	return &Anthropic{client: &client, model: model}
}

// Name implements lessongraph.Model.
func (m *Anthropic) Name() string {
	return m.model
}

// GenerateContent implements lessongraph.Model.
func (m *Anthropic) GenerateContent(
	ctx context.Context,
	req *lessongraph.CompletionRequest,
) (*lessongraph.Completion, error) {
	system, messages, err := toAnthropicMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(m.model),
		Messages:    messages,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if len(req.Tools) > 0 {
		params.Tools = toAnthropicTools(req.Tools)
	}

	startTime := time.Now()
	resp, err := m.client.Messages.New(ctx, params)
	duration := time.Since(startTime)
	if err != nil {
		return nil, markTransient(err)
	}
	return fromAnthropicMessage(resp, duration)
}

func toAnthropicTools(defs []lessongraph.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		props := schema.Properties(def.Parameters)
		if props == nil {
			props = map[string]any{}
		}
		out[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   schema.Required(def.Parameters),
				},
			},
		}
	}
	return out
}

// toAnthropicMessages splits the history into the system prompt and the message list.
func toAnthropicMessages(history []lessongraph.Message) (string, []anthropic.MessageParam, error) {
	var system []string
	out := make([]anthropic.MessageParam, 0, len(history))
	var pendingResults []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range history {
		if msg.Role != lessongraph.RoleTool {
			flushResults()
		}
		switch msg.Role {
		case lessongraph.RoleSystem:
			system = append(system, msg.Text)
		case lessongraph.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		case lessongraph.RoleTool:
			pendingResults = append(pendingResults,
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Text, false))
		case lessongraph.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1)
			if msg.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				input, err := json.Marshal(nonNilArgs(call.Arguments))
				if err != nil {
					return "", nil, fmt.Errorf("failed to marshal arguments of %s: %w", call.Name, err)
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: json.RawMessage(input),
					},
				})
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			return "", nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	flushResults()

	return strings.Join(system, "\n\n"), out, nil
}

func fromAnthropicMessage(resp *anthropic.Message, duration time.Duration) (*lessongraph.Completion, error) {
	if resp == nil {
		return nil, fmt.Errorf("model returned no message")
	}

	completion := &lessongraph.Completion{
		StopReason: string(resp.StopReason),
		Info: &lessongraph.GenerationInfo{
			InputTokens:       int(resp.Usage.InputTokens),
			OutputTokens:      int(resp.Usage.OutputTokens),
			TotalTokens:       int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			CachedInputTokens: int(resp.Usage.CacheReadInputTokens),
			Duration:          duration,
		},
	}

	var text []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text = append(text, block.AsText().Text)
		case "tool_use":
			tu := block.AsToolUse()
			completion.ToolCalls = append(completion.ToolCalls,
				toolCallRequest(tu.ID, tu.Name, string(tu.Input)))
		}
	}
	completion.Text = strings.Join(text, "\n")
	return completion, nil
}

// Compile-time check that Anthropic implements lessongraph.Model.
var _ lessongraph.Model = (*Anthropic)(nil)
