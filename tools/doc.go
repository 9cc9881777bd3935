// Package tools provides the built-in teaching tools.
//
// Every tool is a plain lessongraph.ToolDefinition, so callers can register a subset:
//
//	registry := toolchain.NewRegistry().MustRegister(tools.Teaching()...)
//
// The content generators are templates, not model calls. They give the Worker a
// consistent skeleton to fill in, which keeps answers structured across retries.
package tools
