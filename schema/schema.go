// Package schema builds and validates the JSON Schemas that describe tool arguments.
//
// # Quick Start
//
//	def := toolchain.FromTool(lessongraph.NewToolFunc(
//	    "generate_ppt_structure",
//	    "Generate a slide outline for a topic",
//	    schema.Object(map[string]*schema.Property{
//	        "topic":  schema.String("Lesson topic"),
//	        "slides": schema.Integer("Number of slides").Min(3).Max(30).Default(8),
//	    }, "topic"), // "topic" is required
//	    outlineFunc,
//	))
//
// The tool registry compiles the schema once at registration, fills in defaults and
// validates arguments before every call. Provider adapters read [Properties] and
// [Required] to build their wire-level tool definitions.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a JSON Schema definition.
// It provides both the raw map representation (for serialization/prompts)
// and a compiled validator (for runtime validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates the given arguments against the schema.
// Returns nil if valid, or a *ValidationError describing the failure.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	// The validator expects JSON-decoded values (float64 numbers, []any arrays).
	// Arguments built in Go code may hold ints or typed slices, so normalize first.
	normalized, err := normalize(args)
	if err != nil {
		return &ValidationError{Err: err}
	}
	if err := s.compiled.Validate(normalized); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ApplyDefaults returns a copy of args with every missing top-level property that
// declares a "default" filled in. The input map is not modified.
func (s *Schema) ApplyDefaults(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	if s == nil {
		return out
	}
	for name, prop := range Properties(s.raw) {
		if _, ok := out[name]; ok {
			continue
		}
		if p, ok := prop.(map[string]any); ok {
			if def, ok := p["default"]; ok {
				out[name] = def
			}
		}
	}
	return out
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
// A nil map compiles to a nil Schema, which accepts anything.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaData, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schemaJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

func normalize(args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("arguments are not JSON encodable: %w", err)
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
}

// -----------------------------------------------------------------------------
// Schema Inspection
// -----------------------------------------------------------------------------

// Properties returns the "properties" object of a raw object schema, or nil.
func Properties(raw map[string]any) map[string]any {
	props, _ := raw["properties"].(map[string]any)
	return props
}

// Required returns the "required" names of a raw object schema. Accepts both
// []string (built in Go) and []any (decoded from JSON).
func Required(raw map[string]any) []string {
	switch req := raw["required"].(type) {
	case []string:
		return req
	case []any:
		names := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}

// Describe renders a one-line-per-parameter summary of a raw object schema for
// prompts:
//
//	- slides (integer, default 8): Number of slides
//	- topic (string, required): Lesson topic
//
// Parameters are sorted by name. Returns "" for a schema without properties.
func Describe(raw map[string]any) string {
	props := Properties(raw)
	if len(props) == 0 {
		return ""
	}
	required := make(map[string]bool)
	for _, r := range Required(raw) {
		required[r] = true
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		p, _ := props[name].(map[string]any)
		attrs := []string{}
		if typ, ok := p["type"].(string); ok {
			attrs = append(attrs, typ)
		}
		if required[name] {
			attrs = append(attrs, "required")
		}
		if def, ok := p["default"]; ok {
			attrs = append(attrs, fmt.Sprintf("default %v", def))
		}
		fmt.Fprintf(&sb, "- %s (%s)", name, strings.Join(attrs, ", "))
		if desc, ok := p["description"].(string); ok && desc != "" {
			sb.WriteString(": ")
			sb.WriteString(desc)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates an object schema with the given properties.
// Pass property names as variadic arguments to mark them as required.
//
// Example:
//
//	// "topic" is required, "grade" is optional
//	schema.Object(map[string]*schema.Property{
//	    "topic": schema.String("Lesson topic"),
//	    "grade": schema.String("Target grade").Default("vocational"),
//	}, "topic")
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// Property represents a property in an object schema.
type Property struct {
	typ         string
	description string
	enum        []any
	minimum     *float64
	maximum     *float64
	minLength   *int
	maxLength   *int
	items       map[string]any
	def         any // default value
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		m["type"] = p.typ
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.minLength != nil {
		m["minLength"] = *p.minLength
	}
	if p.maxLength != nil {
		m["maxLength"] = *p.maxLength
	}
	if p.items != nil {
		m["items"] = p.items
	}
	if p.def != nil {
		m["default"] = p.def
	}

	return m
}

// String creates a string property.
//
// Example:
//
//	schema.String("Arithmetic expression, e.g. (3+5)*2")
//	schema.String("Raw course introduction").MinLength(1)
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
//
// Example:
//
//	schema.Integer("Number of slides").Min(3).Max(30).Default(8)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a number property (floating point).
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// Array creates an array property with the given item schema.
//
// Example:
//
//	schema.Array("Learning objectives", map[string]any{"type": "string"})
func Array(description string, items map[string]any) *Property {
	return &Property{typ: "array", description: description, items: items}
}

// Enum sets allowed values for the property.
//
// Example:
//
//	schema.String("Difficulty").Enum("basic", "intermediate", "advanced")
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Min sets the minimum value for number/integer properties.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the maximum value for number/integer properties.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// MinLength sets the minimum length for string properties.
func (p *Property) MinLength(min int) *Property {
	p.minLength = &min
	return p
}

// MaxLength sets the maximum length for string properties.
func (p *Property) MaxLength(max int) *Property {
	p.maxLength = &max
	return p
}

// Default sets the default value for the property. Defaults are applied by
// [Schema.ApplyDefaults] before validation.
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
