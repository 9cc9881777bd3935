package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rickchristie/lessongraph"
)

// DefaultOpenAIModel is the chat model used when none is configured.
const DefaultOpenAIModel = "gpt-4.1-mini"

// OpenAI is a lessongraph.Model backed by the official openai-go SDK.
// It works against any OpenAI-compatible endpoint through option.WithBaseURL.
//
// SDK-level retries are disabled: the Client owns the retry policy.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI model. Extra request options (base URL, HTTP client)
// are applied after the defaults.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	client := openai.NewClient(append(reqOpts, opts...)...)
	return &OpenAI{client: &client, model: model}
}

// Name implements lessongraph.Model.
func (m *OpenAI) Name() string {
	return m.model
}

// GenerateContent implements lessongraph.Model.
func (m *OpenAI) GenerateContent(
	ctx context.Context,
	req *lessongraph.CompletionRequest,
) (*lessongraph.Completion, error) {
	messages, err := toOpenAIMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(m.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}

	startTime := time.Now()
	resp, err := m.client.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)
	if err != nil {
		return nil, markTransient(err)
	}
	return fromOpenAIResponse(resp, duration)
}

func toOpenAITools(defs []lessongraph.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		out[i] = openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  shared.FunctionParameters(parametersOrEmpty(def.Parameters)),
			},
		}
	}
	return out
}

func toOpenAIMessages(history []lessongraph.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case lessongraph.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Text))
		case lessongraph.RoleUser:
			out = append(out, openai.UserMessage(msg.Text))
		case lessongraph.RoleTool:
			out = append(out, openai.ToolMessage(msg.Text, msg.ToolCallID))
		case lessongraph.RoleAssistant:
			asst := openai.ChatCompletionAssistantMessageParam{}
			if msg.Text != "" {
				asst.Content.OfString = openai.String(msg.Text)
			}
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(nonNilArgs(call.Arguments))
				if err != nil {
					return nil, fmt.Errorf("failed to marshal arguments of %s: %w", call.Name, err)
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func fromOpenAIResponse(
	resp *openai.ChatCompletion,
	duration time.Duration,
) (*lessongraph.Completion, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	choice := resp.Choices[0]

	completion := &lessongraph.Completion{
		Text:       choice.Message.Content,
		StopReason: choice.FinishReason,
		Info: &lessongraph.GenerationInfo{
			InputTokens:       int(resp.Usage.PromptTokens),
			OutputTokens:      int(resp.Usage.CompletionTokens),
			TotalTokens:       int(resp.Usage.TotalTokens),
			CachedInputTokens: int(resp.Usage.PromptTokensDetails.CachedTokens),
			Duration:          duration,
		},
	}
	if completion.Info.TotalTokens == 0 {
		completion.Info.TotalTokens = completion.Info.InputTokens + completion.Info.OutputTokens
	}

	for _, tc := range choice.Message.ToolCalls {
		completion.ToolCalls = append(completion.ToolCalls,
			toolCallRequest(tc.ID, tc.Function.Name, tc.Function.Arguments))
	}
	return completion, nil
}

// Compile-time check that OpenAI implements lessongraph.Model.
var _ lessongraph.Model = (*OpenAI)(nil)
