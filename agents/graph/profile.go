package graph

import (
	"fmt"
	"sort"
	"text/template"
)

// Profile names are accepted by ProfileByName and the "profile" config key.
const (
	ProfileTeaching = "teaching"
	ProfileGeneric  = "generic"
)

// Profile is the set of system prompts that specializes the graph for one domain.
// The graph itself is identical for every profile.
type Profile struct {
	Name string

	// Planner renders the Planner's system message.
	Planner *template.Template

	// Worker renders the system message that seeds the Worker's history.
	Worker *template.Template

	// Critic renders the Critic's rubric. It must ask for the 0/1 flag on the first line.
	Critic *template.Template
}

var profiles = map[string]Profile{
	ProfileTeaching: {
		Name:    ProfileTeaching,
		Planner: mustTemplate("teaching_planner"),
		Worker:  mustTemplate("teaching_worker"),
		Critic:  mustTemplate("teaching_critic"),
	},
	ProfileGeneric: {
		Name:    ProfileGeneric,
		Planner: mustTemplate("generic_planner"),
		Worker:  mustTemplate("generic_worker"),
		Critic:  mustTemplate("generic_critic"),
	},
}

// TeachingProfile returns the lesson-design prompts. It is the default profile.
func TeachingProfile() Profile {
	return profiles[ProfileTeaching]
}

// GenericProfile returns domain-neutral prompts that plan in "step_" lines.
func GenericProfile() Profile {
	return profiles[ProfileGeneric]
}

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", name, ProfileNames())
	}
	return p, nil
}

// ProfileNames returns the built-in profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
