package graph

import "github.com/rickchristie/lessongraph"

// Route picks the next node from the state alone. Rules are evaluated in order and the
// first match wins:
//
//  1. an error is recorded             -> Error
//  2. no plan yet                      -> Planner
//  3. an answer awaits review          -> Critic
//  4. a retry was granted              -> Worker
//  5. no answer yet                    -> Worker
//  6. finished                         -> End
//
// When no rule matches Route returns [lessongraph.NodeUnreachable]; the executor
// reports it and stops.
func Route(state *lessongraph.AgentState) lessongraph.NodeName {
	switch {
	case state.Err != nil:
		return lessongraph.NodeError
	case state.Plan == "":
		return lessongraph.NodePlanner
	case state.FinalAnswer != "" && !state.CriticReviewed:
		return lessongraph.NodeCritic
	case state.NeedRetry && !state.Finished:
		return lessongraph.NodeWorker
	case state.FinalAnswer == "":
		return lessongraph.NodeWorker
	case state.Finished:
		return lessongraph.NodeEnd
	default:
		return lessongraph.NodeUnreachable
	}
}
