package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/schema"
	"github.com/rickchristie/lessongraph/toolchain"
)

const (
	TextStatsName         = "text_stats"
	CourseIntroPolishName = "course_intro_polish"
)

// TextStatsInput is the argument object of text_stats.
type TextStatsInput struct {
	Text string `json:"text"`
}

// TextStatsOutput is rendered to the model as YAML.
type TextStatsOutput struct {
	Characters int `yaml:"characters"`
	Words      int `yaml:"words"`
	Lines      int `yaml:"lines"`
}

// CountText counts characters (runes), whitespace-separated words and lines.
func CountText(text string) TextStatsOutput {
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	return TextStatsOutput{
		Characters: utf8.RuneCountInString(text),
		Words:      len(strings.Fields(text)),
		Lines:      lines,
	}
}

// TextStats reports the length of a text.
func TextStats() lessongraph.ToolDefinition {
	return toolchain.FromTool[TextStatsInput, TextStatsOutput](lessongraph.NewToolFunc(
		TextStatsName,
		"Count the characters, words and lines of a text.",
		schema.Object(map[string]*schema.Property{
			"text": schema.String("Text to measure"),
		}, "text"),
		func(_ context.Context, in TextStatsInput) (TextStatsOutput, error) {
			return CountText(in.Text), nil
		},
	))
}

// CourseIntroInput is the argument object of course_intro_polish.
type CourseIntroInput struct {
	RawIntro string `json:"raw_intro"`
}

// CourseIntroPolish turns a draft course introduction into a formal section the Worker
// can refine further.
func CourseIntroPolish() lessongraph.ToolDefinition {
	return toolchain.FromTool[CourseIntroInput, string](lessongraph.NewToolFunc(
		CourseIntroPolishName,
		"Rewrite a draft course introduction into a concise, formal version for syllabi, "+
			"course handbooks or enrollment brochures.",
		schema.Object(map[string]*schema.Property{
			"raw_intro": schema.String("Draft course introduction").MinLength(1),
		}, "raw_intro"),
		func(_ context.Context, in CourseIntroInput) (string, error) {
			intro := strings.TrimSpace(in.RawIntro)
			if intro == "" {
				return "", fmt.Errorf("raw_intro is empty")
			}
			return "Professional course introduction based on your draft:\n\n" +
				"[Course Introduction]\n" + intro + "\n\n" +
				"(Wording tightened, structure organized and tone formalized.)", nil
		},
	))
}
