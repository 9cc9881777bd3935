package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Renderer turns a Document into file content.
type Renderer interface {
	// Name is the format name used on the command line.
	Name() string

	// Extension is the file extension without the dot.
	Extension() string

	Render(doc *Document) ([]byte, error)
}

// Text renders plain text with underlined section titles.
type Text struct{}

func (Text) Name() string      { return "text" }
func (Text) Extension() string { return "txt" }

func (Text) Render(doc *Document) ([]byte, error) {
	var b strings.Builder
	section := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		fmt.Fprintf(&b, "%s\n%s\n%s\n\n", title, strings.Repeat("=", len(title)), strings.TrimSpace(body))
	}

	section("Task", doc.Task)
	section("Plan", doc.Plan)
	section("Final Answer", doc.FinalAnswer)
	section("Critic Review", doc.CriticReview)
	section("Tool Calls", toolLogLines(doc, "%d. %s(%s) -> %s"))
	fmt.Fprintf(&b, "Task ID: %s\nCreated: %s\n", doc.TaskID, doc.CreatedAt.Format("2006-01-02 15:04:05"))
	return []byte(b.String()), nil
}

// Markdown renders a markdown document with one second-level header per section.
type Markdown struct{}

func (Markdown) Name() string      { return "markdown" }
func (Markdown) Extension() string { return "md" }

func (Markdown) Render(doc *Document) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", firstLine(doc.Task))
	fmt.Fprintf(&b, "_Task %s, %s_\n\n", doc.TaskID, doc.CreatedAt.Format("2006-01-02 15:04"))

	section := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, strings.TrimSpace(body))
	}
	section("Task", doc.Task)
	section("Plan", doc.Plan)
	section("Final Answer", doc.FinalAnswer)
	section("Critic Review", doc.CriticReview)
	section("Tool Calls", toolLogLines(doc, "%d. `%s(%s)` → %s"))

	return []byte(strings.TrimRight(b.String(), "\n") + "\n"), nil
}

// JSON renders indented JSON.
type JSON struct{}

func (JSON) Name() string      { return "json" }
func (JSON) Extension() string { return "json" }

func (JSON) Render(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render json: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML renders a YAML document.
type YAML struct{}

func (YAML) Name() string      { return "yaml" }
func (YAML) Extension() string { return "yaml" }

func (YAML) Render(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render yaml: %w", err)
	}
	return data, nil
}

var renderers = map[string]Renderer{
	"text":     Text{},
	"txt":      Text{},
	"markdown": Markdown{},
	"md":       Markdown{},
	"json":     JSON{},
	"yaml":     YAML{},
	"yml":      YAML{},
}

// RendererByName looks up a renderer by format name or extension, case-insensitively.
func RendererByName(name string) (Renderer, error) {
	r, ok := renderers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q (available: %s)", name, strings.Join(Formats(), ", "))
	}
	return r, nil
}

// Formats lists the canonical format names.
func Formats() []string {
	return []string{Text{}.Name(), Markdown{}.Name(), JSON{}.Name(), YAML{}.Name()}
}

func toolLogLines(doc *Document, format string) string {
	lines := make([]string, len(doc.ToolLog))
	for i, entry := range doc.ToolLog {
		lines[i] = fmt.Sprintf(format, i+1, entry.ToolName, formatArgs(entry.Arguments), firstLine(entry.Result))
	}
	return strings.Join(lines, "\n")
}

// formatArgs renders arguments as key=value pairs in key order.
func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, args[k])
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

var (
	_ Renderer = Text{}
	_ Renderer = Markdown{}
	_ Renderer = JSON{}
	_ Renderer = YAML{}
)
