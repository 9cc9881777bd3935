package lessongraph

import (
	"strings"
	"sync"
)

// ExecutionStats contains counters for one task. All standard keys are prefixed with
// "lessongraph:" to avoid collisions with user-defined keys.
//
// Stats serve two purposes:
//
//  1. Limits: checked on every update to stop a runaway task (e.g., too many tool
//     calls or tokens). See [Limit].
//
//  2. Reporting: hooks read them at the end of a task (see package metrics).
//
// All methods are safe for concurrent use.
type ExecutionStats struct {
	mu       sync.RWMutex
	counters map[string]int64
	onUpdate func() // limit check, set by ExecutionContext
}

// NewExecutionStats creates a standalone ExecutionStats with no limit checking.
func NewExecutionStats() *ExecutionStats {
	return &ExecutionStats{
		counters: make(map[string]int64),
	}
}

// IncrCounter increments a counter by delta. Creates the counter if it doesn't exist.
//
// Panics if delta is negative (counters only go up).
// Protected keys (e.g., KeySteps) are silently ignored.
func (s *ExecutionStats) IncrCounter(key StatKey, delta int64) {
	if delta < 0 {
		panic("lessongraph: IncrCounter called with negative delta")
	}
	if isProtectedKey(key) {
		return
	}
	s.incr(key, delta)
}

// incr increments without the protected-key check. Used by the executor.
func (s *ExecutionStats) incr(key StatKey, delta int64) {
	s.mu.Lock()
	s.counters[string(key)] += delta
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
}

// GetCounter returns the current value of a counter, or 0 if not set.
func (s *ExecutionStats) GetCounter(key StatKey) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[string(key)]
}

// Counters returns a copy of all counters.
func (s *ExecutionStats) Counters() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		result[k] = v
	}
	return result
}

// matching returns every counter whose key satisfies the limit's key rule.
func (s *ExecutionStats) matching(limit Limit) map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]int64)
	for k, v := range s.counters {
		switch limit.Type {
		case LimitKeyPrefix:
			if strings.HasPrefix(k, string(limit.Key)) {
				result[k] = v
			}
		default:
			if k == string(limit.Key) {
				result[k] = v
			}
		}
	}
	return result
}

// GetSteps returns the number of nodes the executor has run.
func (s *ExecutionStats) GetSteps() int64 {
	return s.GetCounter(KeySteps)
}

// GetTotalInputTokens returns the total input tokens across all models.
func (s *ExecutionStats) GetTotalInputTokens() int64 {
	return s.GetCounter(KeyInputTokens)
}

// GetTotalOutputTokens returns the total output tokens across all models.
func (s *ExecutionStats) GetTotalOutputTokens() int64 {
	return s.GetCounter(KeyOutputTokens)
}

// GetToolCallCount returns the total number of executed tool calls.
func (s *ExecutionStats) GetToolCallCount() int64 {
	return s.GetCounter(KeyToolCalls)
}
