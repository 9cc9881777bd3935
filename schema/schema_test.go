package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type input struct {
		raw map[string]any
	}

	type expected struct {
		isNil  bool
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "nil schema returns nil",
			input:    input{raw: nil},
			expected: expected{isNil: true},
		},
		{
			name: "valid schema compiles",
			input: input{
				raw: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"topic": map[string]any{"type": "string"},
					},
				},
			},
			expected: expected{isNil: false},
		},
		{
			name: "invalid type keyword fails",
			input: input{
				raw: map[string]any{"type": 42},
			},
			expected: expected{isNil: true, hasErr: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.input.raw)

			if tt.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.expected.isNil {
				assert.Nil(t, s)
			} else {
				require.NotNil(t, s)
				assert.Equal(t, tt.input.raw, s.Raw())
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	raw := Object(map[string]*Property{
		"topic":  String("Lesson topic").MinLength(1),
		"slides": Integer("Number of slides").Min(3).Max(30),
		"grade":  String("Target grade").Enum("primary", "secondary", "vocational"),
	}, "topic")

	type expected struct {
		hasErr bool
	}

	tests := []struct {
		name     string
		input    map[string]any
		expected expected
	}{
		{
			name:     "valid with go int passes",
			input:    map[string]any{"topic": "fractions", "slides": 8},
			expected: expected{hasErr: false},
		},
		{
			name:     "valid with json float passes",
			input:    map[string]any{"topic": "fractions", "slides": float64(8)},
			expected: expected{hasErr: false},
		},
		{
			name:     "missing required topic fails",
			input:    map[string]any{"slides": 8},
			expected: expected{hasErr: true},
		},
		{
			name:     "empty topic fails min length",
			input:    map[string]any{"topic": ""},
			expected: expected{hasErr: true},
		},
		{
			name:     "slides out of range fails",
			input:    map[string]any{"topic": "fractions", "slides": 100},
			expected: expected{hasErr: true},
		},
		{
			name:     "wrong type fails",
			input:    map[string]any{"topic": "fractions", "slides": "eight"},
			expected: expected{hasErr: true},
		},
		{
			name:     "value outside enum fails",
			input:    map[string]any{"topic": "fractions", "grade": "university"},
			expected: expected{hasErr: true},
		},
		{
			name:     "nil args fail required check",
			input:    nil,
			expected: expected{hasErr: true},
		},
	}

	s, err := Compile(raw)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.input)

			if tt.expected.hasErr {
				require.Error(t, err)
				var vErr *ValidationError
				assert.ErrorAs(t, err, &vErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema_Validate_NilSchema(t *testing.T) {
	var s *Schema
	err := s.Validate(map[string]any{"foo": "bar"})
	assert.NoError(t, err, "nil schema should always pass validation")
}

func TestSchema_ApplyDefaults(t *testing.T) {
	s := MustCompile(Object(map[string]*Property{
		"topic":  String("Lesson topic"),
		"slides": Integer("Number of slides").Default(8),
		"grade":  String("Target grade").Default("vocational"),
	}, "topic"))

	tests := []struct {
		name     string
		input    map[string]any
		expected map[string]any
	}{
		{
			name:  "fills every missing default",
			input: map[string]any{"topic": "fractions"},
			expected: map[string]any{
				"topic":  "fractions",
				"slides": 8,
				"grade":  "vocational",
			},
		},
		{
			name:  "keeps provided values",
			input: map[string]any{"topic": "fractions", "slides": float64(12)},
			expected: map[string]any{
				"topic":  "fractions",
				"slides": float64(12),
				"grade":  "vocational",
			},
		},
		{
			name:  "nil input still gets defaults",
			input: nil,
			expected: map[string]any{
				"slides": 8,
				"grade":  "vocational",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tt.input)
			result := s.ApplyDefaults(tt.input)

			assert.Equal(t, tt.expected, result)
			assert.Len(t, tt.input, before, "input must not be modified")
		})
	}
}

func TestSchema_ApplyDefaults_NilSchema(t *testing.T) {
	var s *Schema
	result := s.ApplyDefaults(map[string]any{"a": 1})
	assert.Equal(t, map[string]any{"a": 1}, result)
}

func TestRequired(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		expected []string
	}{
		{
			name:     "string slice",
			input:    map[string]any{"required": []string{"topic"}},
			expected: []string{"topic"},
		},
		{
			name:     "decoded json slice",
			input:    map[string]any{"required": []any{"topic", "grade"}},
			expected: []string{"topic", "grade"},
		},
		{
			name:     "absent",
			input:    map[string]any{"type": "object"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Required(tt.input))
		})
	}
}

func TestDescribe(t *testing.T) {
	raw := Object(map[string]*Property{
		"topic":  String("Lesson topic"),
		"slides": Integer("Number of slides").Default(8),
	}, "topic")

	expected := "- slides (integer, default 8): Number of slides\n" +
		"- topic (string, required): Lesson topic\n"

	assert.Equal(t, expected, Describe(raw))
	assert.Equal(t, "", Describe(map[string]any{"type": "object"}))
	assert.Equal(t, "", Describe(nil))
}

func TestObject_Basic(t *testing.T) {
	schema := Object(map[string]*Property{
		"expression": String("Arithmetic expression"),
		"precision":  Integer("Decimal places"),
	}, "expression")

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "expected properties map")
	assert.Len(t, props, 2)

	required, ok := schema["required"].([]string)
	require.True(t, ok, "expected required array")
	assert.Equal(t, []string{"expression"}, required)
}

func TestProperty_Build(t *testing.T) {
	tests := []struct {
		name     string
		input    *Property
		expected map[string]any
	}{
		{
			name:  "string with length bounds",
			input: String("Raw intro").MinLength(1).MaxLength(2000),
			expected: map[string]any{
				"type":        "string",
				"description": "Raw intro",
				"minLength":   1,
				"maxLength":   2000,
			},
		},
		{
			name:  "integer with range and default",
			input: Integer("Slides").Min(3).Max(30).Default(8),
			expected: map[string]any{
				"type":        "integer",
				"description": "Slides",
				"minimum":     float64(3),
				"maximum":     float64(30),
				"default":     8,
			},
		},
		{
			name:  "number",
			input: Number("Weight"),
			expected: map[string]any{
				"type":        "number",
				"description": "Weight",
			},
		},
		{
			name:  "boolean",
			input: Boolean("Include answers"),
			expected: map[string]any{
				"type":        "boolean",
				"description": "Include answers",
			},
		},
		{
			name:  "array",
			input: Array("Objectives", map[string]any{"type": "string"}),
			expected: map[string]any{
				"type":        "array",
				"description": "Objectives",
				"items":       map[string]any{"type": "string"},
			},
		},
		{
			name:  "enum",
			input: String("Difficulty").Enum("basic", "advanced"),
			expected: map[string]any{
				"type":        "string",
				"description": "Difficulty",
				"enum":        []any{"basic", "advanced"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.build())
		})
	}
}

func TestValidationError_Unwrap(t *testing.T) {
	inner := &ValidationError{}
	outer := &ValidationError{Err: inner}

	assert.Equal(t, inner, outer.Unwrap())
	assert.Equal(t, "schema validation failed: <nil>", inner.Error())
}
