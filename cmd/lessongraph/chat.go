package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run tasks interactively",
	Long: `Read tasks line by line and run each one. Type 'exit' or 'quit' to leave.
Ctrl-C cancels the running task; at the prompt it exits.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, cfg, logger, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stopMetrics, err := serveMetrics(cfg.Metrics.Addr, a.Metrics().Handler(), logger)
	if err != nil {
		return err
	}
	defer stopMetrics()

	rl, err := readline.New("task> ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Enter a task and press Enter. Type 'exit' to quit.")

	for {
		input, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		res := a.Run(ctx, input)
		stop()

		printResult(out, res)
		fmt.Fprintln(out)
	}
}
