package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/internal/app"
	"github.com/spf13/cobra"
)

var exportFormats []string

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run one task and print the final answer",
	Long: `Run one task through the planner, worker and critic and print the final answer.
With --export the finished task is also written to the export directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().StringSliceVar(&exportFormats, "export", nil, "export formats: text, markdown, json, yaml")
	rootCmd.AddCommand(runCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := a.Run(ctx, strings.Join(args, " "))
	printResult(cmd.OutOrStdout(), res)
	if !res.Succeeded() {
		return fmt.Errorf("task %s ended with %s", res.State.TaskID, res.Termination)
	}

	paths, err := a.Export(res, exportFormats)
	for _, path := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported: %s\n", path)
	}
	return err
}

// printResult writes the plan, final answer and a one-line summary.
func printResult(w io.Writer, res *app.Result) {
	state := res.State
	if state.Plan != "" {
		fmt.Fprintf(w, "Plan:\n%s\n\n", strings.TrimSpace(state.Plan))
	}
	fmt.Fprintf(w, "Answer:\n%s\n\n", strings.TrimSpace(state.FinalAnswer))

	summary := fmt.Sprintf("[%s] %d step(s), %d worker attempt(s), %d tool call(s), %s",
		res.Termination, res.Steps, state.WorkerAttempts, len(state.ToolLog), res.Duration.Round(time.Millisecond))
	if res.Termination != lessongraph.TerminationSuccess && state.Err != nil {
		summary += fmt.Sprintf(", error: %v", state.Err)
	}
	fmt.Fprintln(w, summary)
}
