package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rickchristie/lessongraph/config"
	"github.com/rickchristie/lessongraph/internal/app"
	"github.com/rickchristie/lessongraph/loggers"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile     string
	logLevel    string
	profile     string
	metricsAddr string
	trace       bool
)

var rootCmd = &cobra.Command{
	Use:   "lessongraph",
	Short: "Plan, write and review teaching material with LLM agents",
	Long: `lessongraph runs every task through a planner, a tool-using worker and a critic
that can send the answer back for another attempt. Finished tasks are remembered and
summarized for the planner of the next task.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "prompt profile (teaching, generic)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "write a full transcript of prompts, completions and tool calls to stderr")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("profile") {
		cfg.Profile = profile
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	return cfg, nil
}

// newApp loads the configuration and builds the app with its logger.
func newApp(cmd *cobra.Command) (*app.App, *config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	logger := newLogger(cmd, cfg)
	var opts []app.Option
	if trace {
		opts = append(opts, app.WithHooks(loggers.NewTraceHook(cmd.ErrOrStderr())))
	}
	a, err := app.New(cfg, logger, opts...)
	if err != nil {
		return nil, nil, logger, err
	}
	return a, cfg, logger, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return loggers.New(loggers.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Writer: cmd.ErrOrStderr(),
	})
}

// serveMetrics starts the metrics endpoint when addr is set. The returned function
// shuts it down.
func serveMetrics(addr string, handler http.Handler, logger zerolog.Logger) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", listener.Addr().String()).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}, nil
}
