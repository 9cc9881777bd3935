package graph

import "strings"

// Verdict is the parsed critic response.
type Verdict struct {
	// Retry is true only when the first non-empty line is exactly "1".
	Retry bool

	// Reason is the rationale: the lines after the flag, or the whole response when
	// the flag is missing.
	Reason string

	// Malformed is true when the first non-empty line is neither "0" nor "1".
	// A malformed verdict accepts the answer.
	Malformed bool
}

// ParseVerdict reads the critic's response. The flag line must equal "0" or "1" after
// trimming whitespace; "1 - needs work" or "10" are malformed, not retries.
func ParseVerdict(text string) Verdict {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Verdict{Malformed: true}
	}

	first, rest, _ := strings.Cut(trimmed, "\n")
	switch strings.TrimSpace(first) {
	case "1":
		return Verdict{Retry: true, Reason: strings.TrimSpace(rest)}
	case "0":
		return Verdict{Reason: strings.TrimSpace(rest)}
	default:
		return Verdict{Reason: trimmed, Malformed: true}
	}
}
