package graph

import (
	"strings"
	"text/template"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/toolchain"
	"github.com/rickchristie/lessongraph/toolloop"
)

// DefaultMemoryItems is how many earlier tasks the Planner sees when memory is enabled.
const DefaultMemoryItems = 5

// Clients holds one completion client per role. The roles usually share a provider and
// differ only in temperature; they may also point at different models.
type Clients struct {
	Planner lessongraph.CompletionClient
	Worker  lessongraph.CompletionClient
	Critic  lessongraph.CompletionClient
}

// ----------------------------------------------------------------------------
// Agent - Planner / Worker / Critic graph
// ----------------------------------------------------------------------------

// Agent is the Planner -> Worker -> Critic graph. It implements [lessongraph.Graph]
// and is driven by the executor.
//
// The Agent holds only configuration. All per-task data lives in the AgentState, so
// one Agent can serve concurrent tasks.
//
// Prompts come from a [Profile] and can be replaced one by one via WithPlannerTemplate,
// WithWorkerTemplate and WithCriticTemplate.
type Agent struct {
	clients       Clients
	registry      *toolchain.Registry
	profile       Profile
	reviewTmpl    *template.Template
	retryTmpl     *template.Template
	memory        lessongraph.MemoryStore
	memoryItems   int
	maxToolRounds int
	timeProvider  lessongraph.TimeProvider
}

// New creates an Agent with the given clients and tool registry.
// A nil registry means the Worker runs without tools.
// Defaults:
//   - Profile: TeachingProfile()
//   - MaxToolRounds: toolloop.DefaultMaxRounds
//   - Memory: none
//   - TimeProvider: lessongraph.NewDefaultTimeProvider()
func New(clients Clients, registry *toolchain.Registry) *Agent {
	if registry == nil {
		registry = toolchain.NewRegistry()
	}
	return &Agent{
		clients:       clients,
		registry:      registry,
		profile:       TeachingProfile(),
		reviewTmpl:    DefaultReviewTemplate,
		retryTmpl:     DefaultRetryTemplate,
		memoryItems:   DefaultMemoryItems,
		maxToolRounds: toolloop.DefaultMaxRounds,
		timeProvider:  lessongraph.NewDefaultTimeProvider(),
	}
}

// WithProfile replaces all three role prompts with the profile's.
func (a *Agent) WithProfile(p Profile) *Agent {
	a.profile = p
	return a
}

// WithPlannerTemplate sets a custom Planner system prompt template.
// The template has access to PromptData (Task, MemorySummary, Tools, Time).
func (a *Agent) WithPlannerTemplate(tmpl *template.Template) *Agent {
	a.profile.Planner = tmpl
	return a
}

// WithWorkerTemplate sets a custom Worker system prompt template.
// The template has access to PromptData (Task, Plan, Tools, Time).
func (a *Agent) WithWorkerTemplate(tmpl *template.Template) *Agent {
	a.profile.Worker = tmpl
	return a
}

// WithCriticTemplate sets a custom Critic rubric template. The rubric must ask for the
// 0/1 flag on the first line, see ParseVerdict.
func (a *Agent) WithCriticTemplate(tmpl *template.Template) *Agent {
	a.profile.Critic = tmpl
	return a
}

// WithMemory lets the Planner read the newest n records from store. n <= 0 uses
// DefaultMemoryItems. Writing records is left to the caller once a task finishes.
func (a *Agent) WithMemory(store lessongraph.MemoryStore, n int) *Agent {
	if n <= 0 {
		n = DefaultMemoryItems
	}
	a.memory = store
	a.memoryItems = n
	return a
}

// WithMaxToolRounds sets the Worker's tool-call round budget. Values below 1 are
// treated as 1 by the loop.
func (a *Agent) WithMaxToolRounds(n int) *Agent {
	a.maxToolRounds = n
	return a
}

// WithTimeProvider sets the clock used by prompt templates.
func (a *Agent) WithTimeProvider(tp lessongraph.TimeProvider) *Agent {
	a.timeProvider = tp
	return a
}

// Profile returns the active prompts.
func (a *Agent) Profile() Profile {
	return a.profile
}

// Registry returns the Worker's tool registry.
func (a *Agent) Registry() *toolchain.Registry {
	return a.registry
}

// Route implements lessongraph.Graph. See the package-level Route.
func (a *Agent) Route(state *lessongraph.AgentState) lessongraph.NodeName {
	return Route(state)
}

// Node implements lessongraph.Graph.
func (a *Agent) Node(name lessongraph.NodeName) (lessongraph.Node, bool) {
	switch name {
	case lessongraph.NodePlanner:
		return &plannerNode{agent: a}, true
	case lessongraph.NodeWorker:
		return &workerNode{agent: a}, true
	case lessongraph.NodeCritic:
		return &criticNode{agent: a}, true
	case lessongraph.NodeError:
		return errorNode{}, true
	default:
		return nil, false
	}
}

func (a *Agent) promptData(state *lessongraph.AgentState) PromptData {
	return PromptData{
		Task:  state.UserInput(),
		Plan:  state.Plan,
		Tools: strings.TrimRight(a.registry.Catalog(), "\n"),
		Time:  a.timeProvider,
	}
}

// Compile-time check that Agent implements lessongraph.Graph.
var _ lessongraph.Graph = (*Agent)(nil)
