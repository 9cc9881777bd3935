// Package graph provides the Planner / Worker / Critic agent graph.
//
// # Overview
//
// A task moves through four nodes chosen by the pure [Route] function:
//
//	Planner  asks for a plan (no tools)
//	Worker   runs the tool-call loop and produces FinalAnswer
//	Critic   reviews FinalAnswer and may grant a retry
//	Error    turns a recorded failure into a user-facing FinalAnswer
//
// Nodes never return errors. A failing Planner or Worker stores the error in
// AgentState.Err, and the router sends the task to the Error node. The Critic fails
// open: if it cannot be reached, or its answer does not start with a "0"/"1" flag
// line, the answer is accepted and an ErrorEvent is fired so hooks can log it.
//
// # Basic Usage
//
//	agent := graph.New(graph.Clients{
//	    Planner: plannerClient,
//	    Worker:  workerClient,
//	    Critic:  criticClient,
//	}, registry).
//	    WithProfile(graph.GenericProfile()).
//	    WithMemory(store, 5)
//
//	state := executor.New(agent, executor.DefaultConfig()).Run(ctx, "Summarize chapter 3")
//
// # Retries
//
// When the Critic's first line is "1" and AgentState.RetryCount < MaxRetries, the
// Worker runs again with the critic's reason appended to its history as a system
// message. The Worker therefore runs at most MaxRetries+1 times per task.
//
// # Prompts
//
// Prompts are text/template templates executed with [PromptData]. Two profiles ship
// with the package: "teaching" (lesson design, the default) and "generic".
package graph
