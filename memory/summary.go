package memory

import (
	"fmt"
	"strings"

	"github.com/rickchristie/lessongraph"
)

// NoHistory is the summary used when there are no earlier tasks.
const NoHistory = "No earlier tasks yet; this is the first one."

const summaryFieldLimit = 120

// Summarize builds the short history the Planner sees: one numbered entry per record,
// newest last. n <= 0 keeps every record, otherwise only the newest n.
func Summarize(records []lessongraph.MemoryRecord, n int) string {
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	if len(records) == 0 {
		return NoHistory
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d task(s):", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "\n%d. Task: %s", i+1, clip(r.Task))
		if plan := clip(r.Plan); plan != "" {
			fmt.Fprintf(&b, "\n   Plan: %s", plan)
		}
		if review := clip(dropFlagLine(r.CriticReview)); review != "" {
			fmt.Fprintf(&b, "\n   Review: %s", review)
		}
	}
	return b.String()
}

// clip returns the first non-empty line of s, cut to summaryFieldLimit runes.
func clip(s string) string {
	var line string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	runes := []rune(line)
	if len(runes) <= summaryFieldLimit {
		return line
	}
	return string(runes[:summaryFieldLimit]) + "..."
}

// dropFlagLine removes the critic's leading "0"/"1" verdict line.
func dropFlagLine(review string) string {
	trimmed := strings.TrimSpace(review)
	first, rest, _ := strings.Cut(trimmed, "\n")
	if f := strings.TrimSpace(first); f == "0" || f == "1" {
		return rest
	}
	return trimmed
}
