// Package toolchain holds the tool registry and executes the tool calls a model
// requests.
//
// # Overview
//
// The Registry is responsible for:
//  1. Keeping tool names unique and offering their definitions to the model
//  2. Filling in schema defaults and validating arguments against JSON Schema
//  3. Executing handlers with panic recovery
//  4. Turning every failure into tool result text so the model can recover
//
// # Failure Handling
//
// A model may hallucinate a tool name or send bad arguments. None of these abort the
// task. Execute returns a CallResult whose Output explains the problem to the model
// and whose Err classifies it:
//
//	result := registry.Execute(execCtx, call)
//	switch {
//	case errors.Is(result.Err, lessongraph.ErrToolNotFound):
//	case errors.Is(result.Err, lessongraph.ErrToolHandler):
//	}
//
// # Typed Tools
//
// FromTool adapts a lessongraph.Tool[I, O] into a ToolDefinition. Arguments are decoded
// into I through a JSON round trip. Outputs that are not strings are rendered as YAML.
package toolchain
