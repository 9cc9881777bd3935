package toolchain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/schema"
)

// Registry maps tool names to definitions and executes model-requested tool calls.
//
// Registration happens before any task runs. After that the registry is read-only and
// safe to share across concurrent tasks.
//
// Execute never returns an error to its caller: every failure (unknown tool, invalid
// arguments, handler error or panic) becomes the text of the tool result so the model
// can recover, and is reported through hooks and stats.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	tools   map[string]lessongraph.ToolDefinition
	schemas map[string]*schema.Schema // compiled schemas for validation
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		order:   make([]string, 0),
		tools:   make(map[string]lessongraph.ToolDefinition),
		schemas: make(map[string]*schema.Schema),
	}
}

// Register adds a tool. It fails on an empty name, a nil handler, a duplicate name or
// a parameter schema that does not compile.
func (r *Registry) Register(def lessongraph.ToolDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return errors.New("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %q has no handler", def.Name)
	}

	compiled, err := schema.Compile(def.Parameters)
	if err != nil {
		return fmt.Errorf("tool %q: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", lessongraph.ErrDuplicateTool, def.Name)
	}
	r.order = append(r.order, def.Name)
	r.tools[def.Name] = def
	if compiled != nil {
		r.schemas[def.Name] = compiled
	}
	return nil
}

// RegisterAll registers every definition, stopping at the first error.
func (r *Registry) RegisterAll(defs ...lessongraph.ToolDefinition) error {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like RegisterAll but panics on error.
// Use this for registries built at init time.
func (r *Registry) MustRegister(defs ...lessongraph.ToolDefinition) *Registry {
	if err := r.RegisterAll(defs...); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the definition for name. The bool reports whether it exists.
func (r *Registry) Lookup(name string) (lessongraph.ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.tools[name]
	return def, ok
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []lessongraph.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]lessongraph.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name])
	}
	return defs
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Catalog returns the tool catalog for system prompts, in registration order.
func (r *Registry) Catalog() string {
	var sb strings.Builder
	for i, def := range r.Definitions() {
		fmt.Fprintf(&sb, "%d) %s: %s\n", i+1, def.Name, def.Description)
		if params := schema.Describe(def.Parameters); params != "" {
			for _, line := range strings.Split(strings.TrimRight(params, "\n"), "\n") {
				sb.WriteString("   ")
				sb.WriteString(line)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// CallResult is the outcome of executing one tool call.
type CallResult struct {
	// Output is the tool result text sent back to the model. Always set, including on
	// failure.
	Output string

	// Err is nil on success. It matches lessongraph.ErrToolNotFound,
	// lessongraph.ErrInvalidArguments, lessongraph.ErrToolHandler or
	// *schema.ValidationError.
	Err error
}

// Execute runs one tool call requested by the model.
// When execCtx is provided, hooks fire and stats are updated. execCtx may be nil.
func (r *Registry) Execute(
	execCtx *lessongraph.ExecutionContext,
	call lessongraph.ToolCallRequest,
) CallResult {
	stats := execCtx.Stats()
	stats.IncrCounter(lessongraph.KeyToolCalls, 1)
	stats.IncrCounter(lessongraph.KeyToolCallsFor.For(call.Name), 1)

	def, ok := r.Lookup(call.Name)
	if !ok {
		err := fmt.Errorf("%w: %s", lessongraph.ErrToolNotFound, call.Name)
		output := fmt.Sprintf(
			"Error: tool %q was not found. Available tools: %s.",
			call.Name, strings.Join(r.Names(), ", "),
		)
		return r.fail(execCtx, call, call.Arguments, output, err, 0)
	}

	if err := call.ArgumentsError(); err != nil {
		output := fmt.Sprintf(
			"Error: invalid arguments for tool %q: arguments must be a JSON object, got %q. Call the tool again with valid arguments.",
			call.Name, call.RawArguments,
		)
		return r.fail(execCtx, call, call.Arguments, output, err, 0)
	}

	args := call.Arguments
	r.mu.RLock()
	compiled := r.schemas[call.Name]
	r.mu.RUnlock()
	if compiled != nil {
		args = compiled.ApplyDefaults(args)
		if err := compiled.Validate(args); err != nil {
			output := fmt.Sprintf("Error: invalid arguments for tool %q: %v", call.Name, err)
			return r.fail(execCtx, call, args, output, err, 0)
		}
	}

	// BeforeToolCall hook may modify args
	beforeEvent := &lessongraph.BeforeToolCallEvent{
		ToolName: call.Name,
		CallID:   call.ID,
		Args:     args,
	}
	execCtx.FireBeforeToolCall(beforeEvent)
	args = beforeEvent.Args

	startTime := time.Now()
	output, err := callHandler(execCtx, def.Handler, args)
	duration := time.Since(startTime)

	if err != nil {
		output = fmt.Sprintf("Error: tool %q failed: %v", call.Name, err)
		err = fmt.Errorf("%w: %s: %w", lessongraph.ErrToolHandler, call.Name, err)
		return r.fail(execCtx, call, args, output, err, duration)
	}

	execCtx.FireAfterToolCall(lessongraph.AfterToolCallEvent{
		ToolName: call.Name,
		CallID:   call.ID,
		Args:     args,
		Output:   output,
		Duration: duration,
	})
	return CallResult{Output: output}
}

func (r *Registry) fail(
	execCtx *lessongraph.ExecutionContext,
	call lessongraph.ToolCallRequest,
	args map[string]any,
	output string,
	err error,
	duration time.Duration,
) CallResult {
	execCtx.Stats().IncrCounter(lessongraph.KeyToolCallErrors, 1)
	execCtx.FireAfterToolCall(lessongraph.AfterToolCallEvent{
		ToolName: call.Name,
		CallID:   call.ID,
		Args:     args,
		Output:   output,
		Duration: duration,
		Error:    err,
	})
	execCtx.FireError(lessongraph.ErrorEvent{Err: err})
	return CallResult{Output: output, Err: err}
}

// callHandler runs the handler, converting a panic into an error.
func callHandler(
	execCtx *lessongraph.ExecutionContext,
	handler lessongraph.ToolHandler,
	args map[string]any,
) (output string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			output = ""
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return handler(execCtx.Context(), args)
}
