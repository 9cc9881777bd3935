// Package config loads the runtime configuration from an optional file, environment
// variables and defaults, in that order of precedence (environment wins).
//
// Every key can be set through the environment with the LESSONGRAPH_ prefix and dots
// replaced by underscores:
//
//	LESSONGRAPH_PROVIDER=anthropic
//	LESSONGRAPH_MODEL=claude-3-5-haiku-latest
//	LESSONGRAPH_TEMPERATURE_WORKER=0.5
//	LESSONGRAPH_MEMORY_BACKEND=sqlite
//
// When api_key is empty the provider's conventional variable is used: OPENAI_API_KEY,
// ANTHROPIC_API_KEY or GITHUB_TOKEN.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGitHub    = "github"
)

// Memory backends.
const (
	MemoryFile   = "file"
	MemorySQLite = "sqlite"
	MemoryNone   = "none"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "LESSONGRAPH"

// Config holds the whole runtime configuration.
type Config struct {
	Provider string `mapstructure:"provider"`

	// Model is the provider's model id. Empty means the provider default
	// (gpt-4.1-mini for openai and github).
	Model  string `mapstructure:"model"`
	APIKey string `mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint, for OpenAI-compatible gateways.
	BaseURL string `mapstructure:"base_url"`

	TimeoutSeconds      int               `mapstructure:"timeout_seconds"`
	MaxTransportRetries int               `mapstructure:"max_transport_retries"`
	Temperature         TemperatureConfig `mapstructure:"temperature"`

	MaxSteps      int `mapstructure:"max_steps"`
	MaxRetries    int `mapstructure:"max_retries"`
	MaxToolRounds int `mapstructure:"max_tool_rounds"`

	// Profile selects the prompt set: teaching or generic.
	Profile string `mapstructure:"profile"`

	Memory  MemoryConfig  `mapstructure:"memory"`
	Export  ExportConfig  `mapstructure:"export"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// TemperatureConfig sets the sampling temperature per role.
type TemperatureConfig struct {
	Planner float64 `mapstructure:"planner"`
	Worker  float64 `mapstructure:"worker"`
	Critic  float64 `mapstructure:"critic"`
}

// MemoryConfig selects where finished tasks are remembered.
type MemoryConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`

	// MaxItems is the number of records kept.
	MaxItems int `mapstructure:"max_items"`

	// SummaryItems is the number of records summarized into the Planner prompt.
	SummaryItems int `mapstructure:"summary_items"`
}

// ExportConfig controls where exports are written.
type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	Basename string `mapstructure:"basename"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		TimeoutSeconds:      20,
		MaxTransportRetries: 2,
		Temperature: TemperatureConfig{
			Planner: 0.1,
			Worker:  0.3,
			Critic:  0.0,
		},
		MaxSteps:      10,
		MaxRetries:    2,
		MaxToolRounds: 5,
		Profile:       "teaching",
		Memory: MemoryConfig{
			Backend:      MemoryFile,
			Path:         filepath.Join(".lessongraph", "memory.json"),
			MaxItems:     10,
			SummaryItems: 5,
		},
		Export: ExportConfig{
			Dir:      "exports",
			Basename: "task",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads the configuration. An empty path skips the file; a path that does not
// exist is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Memory.Backend = strings.ToLower(strings.TrimSpace(cfg.Memory.Backend))

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(ProviderKeyEnv(cfg.Provider))
	}
	return cfg, nil
}

// ProviderKeyEnv names the conventional API key variable of a provider.
func ProviderKeyEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGitHub:
		return "GITHUB_TOKEN"
	default:
		return "OPENAI_API_KEY"
	}
}

// setDefaults registers every key so AutomaticEnv can override keys that are absent
// from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("provider", d.Provider)
	v.SetDefault("model", d.Model)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout_seconds", d.TimeoutSeconds)
	v.SetDefault("max_transport_retries", d.MaxTransportRetries)
	v.SetDefault("temperature.planner", d.Temperature.Planner)
	v.SetDefault("temperature.worker", d.Temperature.Worker)
	v.SetDefault("temperature.critic", d.Temperature.Critic)
	v.SetDefault("max_steps", d.MaxSteps)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("max_tool_rounds", d.MaxToolRounds)
	v.SetDefault("profile", d.Profile)
	v.SetDefault("memory.backend", d.Memory.Backend)
	v.SetDefault("memory.path", d.Memory.Path)
	v.SetDefault("memory.max_items", d.Memory.MaxItems)
	v.SetDefault("memory.summary_items", d.Memory.SummaryItems)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.basename", d.Export.Basename)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.pretty", d.Logging.Pretty)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGitHub:
	default:
		add("provider %q is not one of %s, %s, %s", c.Provider, ProviderOpenAI, ProviderAnthropic, ProviderGitHub)
	}
	if c.APIKey == "" {
		add("api key is required: set api_key or %s", ProviderKeyEnv(c.Provider))
	}
	if c.TimeoutSeconds <= 0 {
		add("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.MaxTransportRetries < 0 || c.MaxTransportRetries > 2 {
		add("max_transport_retries must be between 0 and 2, got %d", c.MaxTransportRetries)
	}
	for _, t := range []struct {
		role string
		temp float64
	}{
		{"planner", c.Temperature.Planner},
		{"worker", c.Temperature.Worker},
		{"critic", c.Temperature.Critic},
	} {
		if t.temp < 0 || t.temp > 2 {
			add("temperature.%s must be between 0 and 2, got %g", t.role, t.temp)
		}
	}
	if c.MaxSteps <= 0 {
		add("max_steps must be positive, got %d", c.MaxSteps)
	}
	if c.MaxRetries < 0 {
		add("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.MaxToolRounds <= 0 {
		add("max_tool_rounds must be positive, got %d", c.MaxToolRounds)
	}
	switch c.Memory.Backend {
	case MemoryFile, MemorySQLite:
		if c.Memory.Path == "" {
			add("memory.path is required for the %s backend", c.Memory.Backend)
		}
		if c.Memory.MaxItems <= 0 {
			add("memory.max_items must be positive, got %d", c.Memory.MaxItems)
		}
	case MemoryNone:
	default:
		add("memory.backend %q is not one of %s, %s, %s", c.Memory.Backend, MemoryFile, MemorySQLite, MemoryNone)
	}
	if c.Memory.SummaryItems < 0 {
		add("memory.summary_items must not be negative, got %d", c.Memory.SummaryItems)
	}

	return errors.Join(errs...)
}
