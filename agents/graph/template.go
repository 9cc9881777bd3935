package graph

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/rickchristie/lessongraph"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptData contains the data passed to every prompt template.
// Fields that do not apply to a template are empty.
type PromptData struct {
	// Task is the user's input.
	Task string

	// Plan is the Planner's output. Empty for the planner template.
	Plan string

	// Answer is the Worker's answer. Set for the review template only.
	Answer string

	// Reason is the critic's rationale. Set for the retry template only.
	Reason string

	// MemorySummary describes earlier tasks. Empty when no memory store is configured.
	MemorySummary string

	// Tools is the tool catalogue (see toolchain.Registry.Catalog). Empty without tools.
	Tools string

	// Time provides access to time-related functions in templates.
	// Use {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "2006-01-02"}}, etc.
	Time lessongraph.TimeProvider
}

var (
	// DefaultReviewTemplate renders the user message sent to the Critic.
	DefaultReviewTemplate = mustTemplate("review")

	// DefaultRetryTemplate renders the system message added on a retry entry.
	DefaultRetryTemplate = mustTemplate("retry")
)

func mustTemplate(name string) *template.Template {
	return template.Must(
		template.New(name).ParseFS(templateFS, "templates/"+name+".tmpl"),
	).Lookup(name + ".tmpl")
}

// ExecuteTemplate executes a template with the given data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseTemplate parses a prompt template string. The template has access to the
// PromptData fields.
func ParseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return tmpl, nil
}
