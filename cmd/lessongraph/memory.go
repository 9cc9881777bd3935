package main

import (
	"fmt"
	"strings"

	"github.com/rickchristie/lessongraph/internal/app"
	"github.com/spf13/cobra"
)

var memoryItems int

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Show remembered tasks",
	Args:  cobra.NoArgs,
	RunE:  runMemory,
}

func init() {
	memoryCmd.Flags().IntVarP(&memoryItems, "number", "n", 10, "number of tasks to show (0 for all)")
	rootCmd.AddCommand(memoryCmd)
}

func runMemory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeFn, err := app.OpenMemory(cfg, newLogger(cmd, cfg))
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	out := cmd.OutOrStdout()
	if store == nil {
		fmt.Fprintln(out, "Memory is disabled.")
		return nil
	}
	records, err := store.Recent(cmd.Context(), memoryItems)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No remembered tasks.")
		return nil
	}
	for i, r := range records {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, r.CreatedAt.Local().Format("2006-01-02 15:04"), oneLine(r.Task))
		if r.Plan != "" {
			fmt.Fprintf(out, "   Plan: %s\n", oneLine(r.Plan))
		}
		fmt.Fprintf(out, "   Result: %s\n", oneLine(r.Result))
	}
	return nil
}

func oneLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len([]rune(line)) > 100 {
		return string([]rune(line)[:100]) + "..."
	}
	return line
}
