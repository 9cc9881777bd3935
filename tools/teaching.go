package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/schema"
	"github.com/rickchristie/lessongraph/toolchain"
)

const (
	ClassActivitiesName = "generate_class_activities"
	PPTStructureName    = "generate_ppt_structure"

	// DefaultGrade is the audience used when the model omits one.
	DefaultGrade = "vocational / junior college"

	// DefaultSlides is the deck length used when the model omits one.
	DefaultSlides = 8
	maxSlides     = 30
)

// Teaching returns every built-in tool, in registration order.
func Teaching() []lessongraph.ToolDefinition {
	return []lessongraph.ToolDefinition{
		Calculator(),
		TextStats(),
		ClassActivities(),
		CourseIntroPolish(),
		PPTStructure(),
	}
}

// ClassActivitiesInput is the argument object of generate_class_activities.
type ClassActivitiesInput struct {
	Topic string `json:"topic"`
	Grade string `json:"grade"`
}

// ClassActivities drafts three classroom activities for a topic. Each activity has a
// name, goal, steps and materials.
func ClassActivities() lessongraph.ToolDefinition {
	return toolchain.FromTool[ClassActivitiesInput, string](lessongraph.NewToolFunc(
		ClassActivitiesName,
		"Generate 3 classroom activities for a course topic and student level. "+
			"Each activity has a name, goal, steps and required materials.",
		schema.Object(map[string]*schema.Property{
			"topic": schema.String("Course topic").MinLength(1),
			"grade": schema.String("Student level").Default(DefaultGrade),
		}, "topic"),
		func(_ context.Context, in ClassActivitiesInput) (string, error) {
			return RenderClassActivities(in.Topic, in.Grade), nil
		},
	))
}

// RenderClassActivities builds the activity plan text.
func RenderClassActivities(topic, grade string) string {
	topic = strings.TrimSpace(topic)
	if strings.TrimSpace(grade) == "" {
		grade = DefaultGrade
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nAudience: %s\n", topic, grade)

	activities := []struct {
		name, goal string
		steps      [3]string
		materials  string
	}{
		{
			name: fmt.Sprintf("Warm-up discussion on %q", topic),
			goal: fmt.Sprintf("Activate prior experience and surface what students already think about %q", topic),
			steps: [3]string{
				fmt.Sprintf("The teacher poses a question or scenario related to %q", topic),
				"Students discuss in groups for 3-5 minutes",
				"Each group shares one idea; the teacher summarizes",
			},
			materials: "Board or projector, sticky notes or paper (optional)",
		},
		{
			name: fmt.Sprintf("Group task: explain %q in your own words", topic),
			goal: fmt.Sprintf("Have students restate the core idea of %q in plain language", topic),
			steps: [3]string{
				fmt.Sprintf("Each group receives a task card with a key term from %q", topic),
				"Groups agree on a plain explanation or an analogy",
				"Groups present to the class and answer questions from other groups",
			},
			materials: "Task cards, pens, board or projector for presenting",
		},
		{
			name: "Application brainstorm",
			goal: fmt.Sprintf("Help students see where %q appears in daily life or future work", topic),
			steps: [3]string{
				fmt.Sprintf("The teacher gives 2-3 real scenarios involving %q", topic),
				"Groups brainstorm 3-5 more application scenarios",
				"Groups post their ideas and pick one to explain briefly",
			},
			materials: "Sticky notes, large paper or whiteboard, pens",
		},
	}

	for i, a := range activities {
		fmt.Fprintf(&b, "\nActivity %d:\n[Name] %s\n[Goal] %s\n[Steps]\n", i+1, a.name, a.goal)
		for j, step := range a.steps {
			fmt.Fprintf(&b, "%d. %s\n", j+1, step)
		}
		fmt.Fprintf(&b, "[Materials] %s\n", a.materials)
	}
	return strings.TrimRight(b.String(), "\n")
}

// PPTStructureInput is the argument object of generate_ppt_structure.
type PPTStructureInput struct {
	Topic  string `json:"topic"`
	Slides int    `json:"slides"`
}

// PPTStructure outlines a slide deck: a title and key points per slide.
func PPTStructure() lessongraph.ToolDefinition {
	return toolchain.FromTool[PPTStructureInput, string](lessongraph.NewToolFunc(
		PPTStructureName,
		"Generate a slide deck outline for a course topic: a title and 2-4 key points per slide.",
		schema.Object(map[string]*schema.Property{
			"topic":  schema.String("Course topic").MinLength(1),
			"slides": schema.Integer("Number of slides").Min(1).Max(maxSlides).Default(DefaultSlides),
		}, "topic"),
		func(_ context.Context, in PPTStructureInput) (string, error) {
			return RenderPPTStructure(in.Topic, in.Slides), nil
		},
	))
}

// RenderPPTStructure builds the slide outline. slides <= 0 means DefaultSlides.
func RenderPPTStructure(topic string, slides int) string {
	if slides <= 0 {
		slides = DefaultSlides
	}
	topic = strings.TrimSpace(topic)

	parts := []string{fmt.Sprintf("%q slide outline (%d slides)", topic, slides)}
	for i := 1; i <= slides; i++ {
		parts = append(parts, fmt.Sprintf(
			"Slide %d:\n[Title] A section title about %s\n[Points]\n- Point 1\n- Point 2\n- Point 3",
			i, topic,
		))
	}
	return strings.Join(parts, "\n\n")
}
