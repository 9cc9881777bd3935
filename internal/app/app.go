// Package app wires configuration into a ready-to-run task pipeline: provider model,
// per-role completion clients, tools, memory, hooks and the executor.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/agents/graph"
	"github.com/rickchristie/lessongraph/config"
	"github.com/rickchristie/lessongraph/executor"
	"github.com/rickchristie/lessongraph/export"
	"github.com/rickchristie/lessongraph/loggers"
	"github.com/rickchristie/lessongraph/memory"
	"github.com/rickchristie/lessongraph/memory/sqlite"
	"github.com/rickchristie/lessongraph/metrics"
	"github.com/rickchristie/lessongraph/models"
	"github.com/rickchristie/lessongraph/toolchain"
	"github.com/rickchristie/lessongraph/tools"
	"github.com/rs/zerolog"
	lcgopenai "github.com/tmc/langchaingo/llms/openai"
)

// App runs tasks with one configuration. It is safe to run several tasks concurrently.
type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	model   lessongraph.Model
	tp      lessongraph.TimeProvider
	agent   *graph.Agent
	exec    *executor.Executor
	memory  lessongraph.MemoryStore
	metrics *metrics.Hook
	hooks   []any
	closers []func() error
}

// Option customizes an App.
type Option func(*App)

// WithModel replaces the provider model built from the configuration.
func WithModel(model lessongraph.Model) Option {
	return func(a *App) { a.model = model }
}

// WithTimeProvider sets the clock used for prompts, memory records and export names.
func WithTimeProvider(tp lessongraph.TimeProvider) Option {
	return func(a *App) { a.tp = tp }
}

// WithHooks registers extra hooks after the logging and metrics hooks.
func WithHooks(hooks ...any) Option {
	return func(a *App) { a.hooks = append(a.hooks, hooks...) }
}

// Result is the outcome of one task.
type Result struct {
	State       *lessongraph.AgentState
	Termination lessongraph.TerminationReason
	Steps       int
	Duration    time.Duration
}

// Succeeded reports whether the task reached End without an error.
func (r *Result) Succeeded() bool {
	return r.Termination == lessongraph.TerminationSuccess && r.State.Err == nil
}

// New validates cfg and builds the pipeline.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	profile, err := graph.ProfileByName(cfg.Profile)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		tp:      lessongraph.NewDefaultTimeProvider(),
		metrics: metrics.NewHook(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.model == nil {
		if a.model, err = BuildModel(cfg); err != nil {
			return nil, err
		}
	}
	if err := a.openMemory(); err != nil {
		return nil, err
	}

	registry := toolchain.NewRegistry()
	if err := registry.RegisterAll(tools.Teaching()...); err != nil {
		return nil, err
	}

	a.agent = graph.New(graph.Clients{
		Planner: a.client(cfg.Temperature.Planner),
		Worker:  a.client(cfg.Temperature.Worker),
		Critic:  a.client(cfg.Temperature.Critic),
	}, registry).
		WithProfile(profile).
		WithMaxToolRounds(cfg.MaxToolRounds).
		WithTimeProvider(a.tp)
	if a.memory != nil {
		a.agent.WithMemory(a.memory, cfg.Memory.SummaryItems)
	}

	a.exec = executor.New(a.agent, executor.Config{
		MaxSteps:   cfg.MaxSteps,
		MaxRetries: cfg.MaxRetries,
	}).
		RegisterHook(loggers.NewZerologHook(logger)).
		RegisterHook(a.metrics)
	for _, hook := range a.hooks {
		a.exec.RegisterHook(hook)
	}

	return a, nil
}

// BuildModel creates the provider model named by cfg.Provider.
func BuildModel(cfg *config.Config) (lessongraph.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		var opts []openaioption.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
		}
		return models.NewOpenAI(cfg.APIKey, cfg.Model, opts...), nil
	case config.ProviderAnthropic:
		var opts []anthropicoption.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
		}
		return models.NewAnthropic(cfg.APIKey, cfg.Model, opts...), nil
	case config.ProviderGitHub:
		var opts []lcgopenai.Option
		if cfg.BaseURL != "" {
			opts = append(opts, lcgopenai.WithBaseURL(cfg.BaseURL))
		}
		return models.NewGitHubModel(githubModelName(cfg.Model), cfg.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// githubModelName adds the publisher prefix GitHub Models expects to bare OpenAI names.
func githubModelName(model string) string {
	if model == "" || strings.Contains(model, "/") {
		return model
	}
	return "openai/" + model
}

func (a *App) client(temperature float64) *models.Client {
	retries := a.cfg.MaxTransportRetries
	if retries == 0 {
		retries = -1 // ClientOptions treats zero as "use the default"
	}
	return models.NewClient(a.model, models.ClientOptions{
		Timeout:             a.cfg.Timeout(),
		MaxTransportRetries: retries,
		Temperature:         temperature,
	})
}

func (a *App) openMemory() error {
	store, closeFn, err := OpenMemory(a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.memory = store
	if closeFn != nil {
		a.closers = append(a.closers, closeFn)
	}
	return nil
}

// OpenMemory opens the configured memory backend. It returns a nil store when memory
// is disabled, and a nil close function when the backend holds no resources.
func OpenMemory(cfg *config.Config, logger zerolog.Logger) (lessongraph.MemoryStore, func() error, error) {
	switch cfg.Memory.Backend {
	case config.MemoryFile:
		return memory.NewFileStore(cfg.Memory.Path, cfg.Memory.MaxItems).WithLogger(logger), nil, nil
	case config.MemorySQLite:
		store, err := sqlite.Open(sqlite.Config{
			Path:     cfg.Memory.Path,
			MaxItems: cfg.Memory.MaxItems,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open memory: %w", err)
		}
		return store, store.Close, nil
	case config.MemoryNone:
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend %q", cfg.Memory.Backend)
	}
}

// Run executes one task. A successful task is appended to memory; a memory failure
// is logged and never changes the result.
func (a *App) Run(ctx context.Context, input string) *Result {
	execCtx := a.exec.NewTask(ctx, input)
	a.exec.Execute(execCtx)

	res := &Result{
		State:       execCtx.State(),
		Termination: execCtx.TerminationReason(),
		Steps:       execCtx.Step(),
		Duration:    execCtx.Duration(),
	}
	if res.Succeeded() && a.memory != nil {
		record := lessongraph.NewMemoryRecord(res.State, a.tp.Now())
		if err := a.memory.Append(context.WithoutCancel(ctx), record); err != nil {
			a.logger.Warn().Err(err).Str("task_id", res.State.TaskID).Msg("failed to remember task")
		}
	}
	return res
}

// Export writes the task in every requested format and returns the written paths.
func (a *App) Export(res *Result, formats []string) ([]string, error) {
	doc, err := export.FromState(res.State, a.tp.Now())
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, name := range formats {
		if strings.TrimSpace(name) == "" {
			continue
		}
		renderer, err := export.RendererByName(name)
		if err != nil {
			return paths, err
		}
		path, err := export.WriteFile(a.cfg.Export.Dir, a.cfg.Export.Basename, renderer, doc, a.tp)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Recent returns up to n remembered tasks, oldest first. It returns nothing when memory
// is disabled.
func (a *App) Recent(ctx context.Context, n int) ([]lessongraph.MemoryRecord, error) {
	if a.memory == nil {
		return nil, nil
	}
	return a.memory.Recent(ctx, n)
}

// Metrics returns the Prometheus hook installed on the executor.
func (a *App) Metrics() *metrics.Hook {
	return a.metrics
}

// Agent returns the graph agent.
func (a *App) Agent() *graph.Agent {
	return a.agent
}

// Close releases the memory backend.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
