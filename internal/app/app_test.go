package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/config"
	"github.com/rickchristie/lessongraph/export"
	"github.com/rickchristie/lessongraph/internal/tt"
	"github.com/rickchristie/lessongraph/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Memory.Backend = backend
	cfg.Memory.Path = filepath.Join(dir, "memory", "store")
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.Export.Basename = "lesson"
	return cfg
}

func createTestApp(t *testing.T, cfg *config.Config, model *tt.MockModel) *App {
	t.Helper()
	a, err := New(cfg, zerolog.Nop(),
		WithModel(model),
		WithTimeProvider(lessongraph.NewMockTimeProvider(fixedTime)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// scriptCalculatorTask queues planner, worker (one tool round) and critic responses.
func scriptCalculatorTask(model *tt.MockModel) {
	model.
		AddResponse("1. Use the calculator on 2+2.", 10, 5).
		AddToolCalls(tt.ToolCall("c1", "calculator", map[string]any{"expression": "2+2"})).
		AddResponse("2+2 equals 4.", 20, 5).
		AddResponse("0\nCorrect.", 15, 2)
}

// -----------------------------------------------------------------------------
// Run
// -----------------------------------------------------------------------------

func TestApp_RunRemembersSuccessfulTasks(t *testing.T) {
	for _, backend := range []string{config.MemoryFile, config.MemorySQLite} {
		t.Run(backend, func(t *testing.T) {
			model := tt.NewMockModel()
			scriptCalculatorTask(model)
			scriptCalculatorTask(model)
			a := createTestApp(t, testConfig(t, backend), model)
			ctx := context.Background()

			first := a.Run(ctx, "2+2 calculator task")
			require.True(t, first.Succeeded())
			assert.Equal(t, "2+2 equals 4.", first.State.FinalAnswer)
			assert.Equal(t, 3, first.Steps)
			require.Len(t, first.State.ToolLog, 1)
			assert.Equal(t, "The result of 2+2 is 4", first.State.ToolLog[0].Result)

			records, err := a.Recent(ctx, 0)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "2+2 calculator task", records[0].Task)
			assert.Equal(t, "0\nCorrect.", records[0].CriticReview)
			assert.True(t, fixedTime.Equal(records[0].CreatedAt))

			second := a.Run(ctx, "another task")
			require.True(t, second.Succeeded())

			plannerPrompt := model.CapturedRequests[4].Messages[0].Text
			assert.Contains(t, plannerPrompt, "1. Task: 2+2 calculator task")
		})
	}
}

func TestApp_FailedTaskIsNotRemembered(t *testing.T) {
	model := tt.NewMockModel()
	for i := 0; i < 3; i++ {
		model.AddError(fmt.Errorf("%w: 503", lessongraph.ErrTransient))
	}
	cfg := testConfig(t, config.MemoryFile)
	cfg.MaxTransportRetries = 2
	a := createTestApp(t, cfg, model)

	res := a.Run(context.Background(), "task")

	assert.False(t, res.Succeeded())
	assert.Equal(t, lessongraph.TerminationError, res.Termination)
	assert.ErrorIs(t, res.State.Err, lessongraph.ErrRemoteFailure)

	records, err := a.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = a.Export(res, []string{"text"})
	assert.ErrorIs(t, err, export.ErrNotExportable)
}

func TestApp_ZeroTransportRetriesMeansOneAttempt(t *testing.T) {
	model := tt.NewMockModel().AddError(fmt.Errorf("%w: 503", lessongraph.ErrTransient))
	cfg := testConfig(t, config.MemoryNone)
	cfg.MaxTransportRetries = 0
	a := createTestApp(t, cfg, model)

	res := a.Run(context.Background(), "task")

	var remote *lessongraph.RemoteFailure
	require.True(t, errors.As(res.State.Err, &remote))
	assert.Equal(t, 1, remote.Attempts)
	assert.Equal(t, 1, model.CallCount())
}

func TestApp_MemoryDisabled(t *testing.T) {
	model := tt.NewMockModel()
	scriptCalculatorTask(model)
	a := createTestApp(t, testConfig(t, config.MemoryNone), model)

	res := a.Run(context.Background(), "task")
	require.True(t, res.Succeeded())

	records, err := a.Recent(context.Background(), 0)
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestApp_WithHooks(t *testing.T) {
	model := tt.NewMockModel()
	scriptCalculatorTask(model)
	hook := tt.NewRecordingHook()
	a, err := New(testConfig(t, config.MemoryNone), zerolog.Nop(), WithModel(model), WithHooks(hook))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	res := a.Run(context.Background(), "2+2 calculator task")
	require.True(t, res.Succeeded())

	assert.Equal(t, []lessongraph.NodeName{
		lessongraph.NodePlanner, lessongraph.NodeWorker, lessongraph.NodeCritic,
	}, hook.Nodes())
}

// -----------------------------------------------------------------------------
// Export
// -----------------------------------------------------------------------------

func TestApp_Export(t *testing.T) {
	model := tt.NewMockModel()
	scriptCalculatorTask(model)
	cfg := testConfig(t, config.MemoryNone)
	a := createTestApp(t, cfg, model)

	res := a.Run(context.Background(), "2+2 calculator task")
	require.True(t, res.Succeeded())

	paths, err := a.Export(res, []string{"markdown", "", "json"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cfg.Export.Dir, "lesson_20260302_100000.md"),
		filepath.Join(cfg.Export.Dir, "lesson_20260302_100000.json"),
	}, paths)
	for _, path := range paths {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}

	_, err = a.Export(res, []string{"pdf"})
	assert.ErrorContains(t, err, "unknown export format")
}

// -----------------------------------------------------------------------------
// Construction
// -----------------------------------------------------------------------------

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    func(*config.Config)
		expected string
	}{
		{
			name:     "validation error",
			input:    func(c *config.Config) { c.MaxSteps = 0 },
			expected: "max_steps must be positive",
		},
		{
			name:     "unknown profile",
			input:    func(c *config.Config) { c.Profile = "poetry" },
			expected: "poetry",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, config.MemoryNone)
			tc.input(cfg)

			_, err := New(cfg, zerolog.Nop(), WithModel(tt.NewMockModel()))
			assert.ErrorContains(t, err, tc.expected)
		})
	}
}

func TestBuildModel(t *testing.T) {
	tests := []struct {
		name     string
		input    config.Config
		expected string
	}{
		{name: "openai default", input: config.Config{Provider: config.ProviderOpenAI, APIKey: "k"}, expected: models.DefaultOpenAIModel},
		{name: "anthropic default", input: config.Config{Provider: config.ProviderAnthropic, APIKey: "k"}, expected: models.DefaultAnthropicModel},
		{name: "github prefixes bare names", input: config.Config{Provider: config.ProviderGitHub, APIKey: "k", Model: "gpt-4o"}, expected: models.GitHubGPT4o},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model, err := BuildModel(&tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, model.Name())
		})
	}

	_, err := BuildModel(&config.Config{Provider: "bard"})
	assert.ErrorContains(t, err, `unknown provider "bard"`)
}
