// Package lessongraph is a small graph-style agent runtime for LLM-backed content
// generation such as lesson plans and slide outlines.
//
// A task flows through four nodes wired by a pure router:
//
//	Planner -> Worker -> Critic -> (Worker again | End)
//	   \          \          \
//	    +----------+----------+--> Error -> End
//
// The Worker may loop through a bounded number of tool-call rounds against the model.
// The Critic may send the task back to the Worker a bounded number of times. A step
// ceiling in the driver stops any unexpected router cycle.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "os"
//
//	    "github.com/rickchristie/lessongraph/agents/graph"
//	    "github.com/rickchristie/lessongraph/executor"
//	    "github.com/rickchristie/lessongraph/models"
//	    "github.com/rickchristie/lessongraph/toolchain"
//	    "github.com/rickchristie/lessongraph/tools"
//	)
//
//	func main() {
//	    provider := models.NewOpenAI(os.Getenv("OPENAI_API_KEY"), "gpt-4.1-mini")
//
//	    registry := toolchain.NewRegistry()
//	    if err := registry.RegisterAll(tools.Teaching()...); err != nil {
//	        panic(err)
//	    }
//
//	    agent := graph.New(graph.Clients{
//	        Planner: models.NewClient(provider, models.ClientOptions{Temperature: 0.1}),
//	        Worker:  models.NewClient(provider, models.ClientOptions{Temperature: 0.3}),
//	        Critic:  models.NewClient(provider, models.ClientOptions{Temperature: 0.0}),
//	    }, registry)
//
//	    exec := executor.New(agent, executor.DefaultConfig())
//	    state := exec.Run(context.Background(), "Design a 45 minute lesson on fractions")
//	    fmt.Println(state.FinalAnswer)
//	}
//
// # Observing Execution
//
// Every node transition, model call and tool call fires a hook. Register hooks on the
// executor to log (see package loggers) or to export metrics (see package metrics):
//
//	exec := executor.New(agent, executor.DefaultConfig()).
//	    RegisterHook(loggers.NewZerologHook(logger)).
//	    RegisterHook(metrics.NewHook(nil))
//
// # Failure Containment
//
// Tool failures never abort a task: unknown tools and handler errors are reported
// back to the model as tool results. Model failures that survive the client's
// transport retries abort the task through the Error node, which always produces a
// user-facing FinalAnswer.
package lessongraph
