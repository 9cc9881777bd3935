package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rickchristie/lessongraph"
	"github.com/tmc/langchaingo/llms"
)

// LCGWrapper adapts a LangChainGo llms.Model to lessongraph.Model.
// It converts messages and tool definitions to LangChainGo types and normalizes token
// usage across providers.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCGWrapper(llm).WithModelName("gpt-4.1-mini")
//	client := models.NewClient(model, models.ClientOptions{Temperature: 0.3})
type LCGWrapper struct {
	model     llms.Model
	modelName string
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model:     model,
		modelName: "langchaingo",
	}
}

// WithModelName sets the model name reported in hooks and stats.
// Returns the model for chaining.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// Unwrap returns the underlying llms.Model.
func (m *LCGWrapper) Unwrap() llms.Model {
	return m.model
}

// Name implements lessongraph.Model.
func (m *LCGWrapper) Name() string {
	return m.modelName
}

// GenerateContent implements lessongraph.Model.
func (m *LCGWrapper) GenerateContent(
	ctx context.Context,
	req *lessongraph.CompletionRequest,
) (*lessongraph.Completion, error) {
	messages, err := toLCGMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	options := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		options = append(options, llms.WithTools(toLCGTools(req.Tools)))
	}

	startTime := time.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, messages, options...)
	duration := time.Since(startTime)
	if err != nil {
		return nil, markTransient(err)
	}
	return convertLCGResponse(lcgResponse, duration)
}

// toLCGMessages converts the history into LangChainGo message contents.
// Tool results need the tool name, which is looked up from the assistant message that
// requested the call.
func toLCGMessages(history []lessongraph.Message) ([]llms.MessageContent, error) {
	callNames := make(map[string]string)
	out := make([]llms.MessageContent, 0, len(history))

	for _, msg := range history {
		switch msg.Role {
		case lessongraph.RoleSystem:
			out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, msg.Text))
		case lessongraph.RoleUser:
			out = append(out, llms.TextParts(llms.ChatMessageTypeHuman, msg.Text))
		case lessongraph.RoleAssistant:
			content := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if msg.Text != "" {
				content.Parts = append(content.Parts, llms.TextContent{Text: msg.Text})
			}
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(nonNilArgs(call.Arguments))
				if err != nil {
					return nil, fmt.Errorf("failed to marshal arguments of %s: %w", call.Name, err)
				}
				callNames[call.ID] = call.Name
				content.Parts = append(content.Parts, llms.ToolCall{
					ID:   call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, content)
		case lessongraph.RoleTool:
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.ToolCallID,
						Name:       callNames[msg.ToolCallID],
						Content:    msg.Text,
					},
				},
			})
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}
	return out, nil
}

func toLCGTools(defs []lessongraph.ToolDefinition) []llms.Tool {
	tools := make([]llms.Tool, len(defs))
	for i, def := range defs {
		tools[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  parametersOrEmpty(def.Parameters),
			},
		}
	}
	return tools
}

// convertLCGResponse converts the first choice of an llms.ContentResponse into a
// Completion with normalized tokens.
func convertLCGResponse(
	lcgResponse *llms.ContentResponse,
	duration time.Duration,
) (*lessongraph.Completion, error) {
	if lcgResponse == nil || len(lcgResponse.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	choice := lcgResponse.Choices[0]

	completion := &lessongraph.Completion{
		Text:       choice.Content,
		StopReason: choice.StopReason,
		Info:       &lessongraph.GenerationInfo{Duration: duration},
	}

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		completion.ToolCalls = append(completion.ToolCalls,
			toolCallRequest(tc.ID, tc.FunctionCall.Name, tc.FunctionCall.Arguments))
	}

	if rawInfo := choice.GenerationInfo; rawInfo != nil {
		info := completion.Info
		info.RawGenerationInfo = rawInfo
		info.InputTokens = extractInputTokens(rawInfo)
		info.OutputTokens = extractOutputTokens(rawInfo)
		info.TotalTokens = extractTotalTokens(rawInfo, info.InputTokens, info.OutputTokens)
		info.CachedInputTokens = extractCachedInputTokens(rawInfo)
	}

	return completion, nil
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
// Handles different key names used by different providers.
func extractInputTokens(info map[string]any) int {
	// OpenAI / Ollama / Maritaca / Google (compat)
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "input_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "output_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractTotalTokens extracts total token count or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	if v := getIntFromMap(info, "TotalTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

// extractCachedInputTokens extracts cached input token count from GenerationInfo.
func extractCachedInputTokens(info map[string]any) int {
	// OpenAI
	if v := getIntFromMap(info, "PromptCachedTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "CacheReadInputTokens"); v > 0 {
		return v
	}
	// Google / Ollama
	if v := getIntFromMap(info, "CachedTokens"); v > 0 {
		return v
	}
	return 0
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------
// Shared conversion helpers
// -----------------------------------------------------------------------------

// decodeArguments parses a JSON arguments object. Empty input means no arguments.
func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// toolCallRequest builds a request from provider-encoded arguments. Arguments that do
// not decode are kept in RawArguments; the registry answers such a call with an error
// result and sibling calls still run.
func toolCallRequest(id, name, raw string) lessongraph.ToolCallRequest {
	req := lessongraph.ToolCallRequest{ID: callID(id), Name: name}
	args, err := decodeArguments(raw)
	if err != nil {
		req.Arguments = map[string]any{}
		req.RawArguments = raw
		return req
	}
	req.Arguments = args
	return req
}

// callID returns id, or a fresh one when the provider omitted it.
func callID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}

func nonNilArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return args
}

func parametersOrEmpty(params map[string]any) map[string]any {
	if params == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return params
}

// Compile-time check that LCGWrapper implements lessongraph.Model.
var _ lessongraph.Model = (*LCGWrapper)(nil)
