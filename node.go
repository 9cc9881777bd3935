package lessongraph

// NodeName identifies a node in the graph, or the End sentinel.
type NodeName string

const (
	NodePlanner NodeName = "planner"
	NodeWorker  NodeName = "worker"
	NodeCritic  NodeName = "critic"
	NodeError   NodeName = "error"

	// NodeEnd is not a runnable node. The router returns it to stop the driver.
	NodeEnd NodeName = "end"

	// NodeUnreachable is returned by a router whose rules all fell through. It is never
	// runnable; the driver reports it and stops.
	NodeUnreachable NodeName = "unreachable"
)

// Node is one step of the graph. It reads and mutates execCtx.State() in place.
//
// Nodes never return errors: failures are recorded in the state (AgentState.Err) so
// the router can send the task to the Error node.
type Node interface {
	Name() NodeName
	Run(execCtx *ExecutionContext)
}

// Graph binds a router to the nodes it can route to. The executor drives a Graph.
type Graph interface {
	// Route is a pure function from state to the next node name, or NodeEnd.
	Route(state *AgentState) NodeName

	// Node returns the runnable node for name. Returns false for unknown names.
	Node(name NodeName) (Node, bool)
}
