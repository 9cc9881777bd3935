// Package hooks dispatches task lifecycle events to observers.
//
// The hook interfaces live in the lessongraph package, one per event. Task and node
// events bracket the walk through planner, worker and critic:
//   - [lessongraph.BeforeExecutionHook] and [lessongraph.AfterExecutionHook] once per task
//   - [lessongraph.BeforeNodeHook] and [lessongraph.AfterNodeHook] around each node
//   - [lessongraph.ErrorHook] for failures, including ones the task survives
//
// The worker's tool loop adds model and tool events:
//   - [lessongraph.BeforeModelCallHook] and [lessongraph.AfterModelCallHook] per attempt
//   - [lessongraph.BeforeToolCallHook], which may rewrite the arguments, and
//     [lessongraph.AfterToolCallHook]
//
// Executor.RegisterHook appends to the executor's own registry. Executor.WithHooks
// swaps in a [Registry], which lets several executors share the same hooks.
//
// loggers.ZerologHook, loggers.TraceHook and metrics.Hook implement every interface.
package hooks
