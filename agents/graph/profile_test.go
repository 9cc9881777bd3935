package graph

import (
	"testing"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileByName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "teaching", input: "teaching", expected: ProfileTeaching},
		{name: "generic", input: "generic", expected: ProfileGeneric},
		{name: "unknown", input: "legal", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			profile, err := ProfileByName(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "available: [generic teaching]")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, profile.Name)
			assert.NotNil(t, profile.Planner)
			assert.NotNil(t, profile.Worker)
			assert.NotNil(t, profile.Critic)
		})
	}
}

func TestProfileNames(t *testing.T) {
	assert.Equal(t, []string{ProfileGeneric, ProfileTeaching}, ProfileNames())
}

// -----------------------------------------------------------------------------
// Templates
// -----------------------------------------------------------------------------

func TestProfiles_CriticAsksForFlag(t *testing.T) {
	for _, name := range ProfileNames() {
		t.Run(name, func(t *testing.T) {
			profile, err := ProfileByName(name)
			require.NoError(t, err)

			text, err := ExecuteTemplate(profile.Critic, PromptData{})
			require.NoError(t, err)
			assert.Contains(t, text, "Line 1: only the digit 0")
		})
	}
}

func TestTeachingPlanner_OptionalSections(t *testing.T) {
	tp := lessongraph.NewMockTimeProvider(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))

	tests := []struct {
		name        string
		input       PromptData
		contains    []string
		notContains []string
	}{
		{
			name:        "bare",
			input:       PromptData{Time: tp},
			contains:    []string{"Today is 2026-03-02."},
			notContains: []string{"Earlier tasks", "can call these tools"},
		},
		{
			name:     "memory and tools",
			input:    PromptData{Time: tp, MemorySummary: "1. Task: fractions", Tools: "- calculator: math"},
			contains: []string{"Earlier tasks", "1. Task: fractions", "- calculator: math"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ExecuteTemplate(TeachingProfile().Planner, tc.input)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tc.notContains {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestRetryTemplate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with reason",
			input:    "Add a slide outline.",
			expected: "Critic feedback on your previous answer, improve accordingly:\nAdd a slide outline.",
		},
		{
			name:     "without reason",
			input:    "",
			expected: "The critic rejected your previous answer without a reason. Review it against the plan and improve it.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			text, err := ExecuteTemplate(DefaultRetryTemplate, PromptData{Reason: tc.input})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, text)
		})
	}
}

func TestParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate("custom", "Task: {{.Task}}")
	require.NoError(t, err)
	text, err := ExecuteTemplate(tmpl, PromptData{Task: "fractions"})
	require.NoError(t, err)
	assert.Equal(t, "Task: fractions", text)

	_, err = ParseTemplate("broken", "{{.Task")
	assert.ErrorContains(t, err, "failed to parse broken template")
}
