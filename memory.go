package lessongraph

import (
	"context"
	"time"
)

// MemoryRecord is one finished task kept in persisted memory.
type MemoryRecord struct {
	TaskID       string    `json:"task_id" yaml:"task_id"`
	Task         string    `json:"task" yaml:"task"`
	Plan         string    `json:"plan" yaml:"plan"`
	Result       string    `json:"result" yaml:"result"`
	CriticReview string    `json:"critic_review,omitempty" yaml:"critic_review,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// MemoryStore is a bounded log of finished tasks.
//
// Implementations keep at most N records (oldest evicted first), serialize concurrent
// appends, and degrade to an empty history when the backing store cannot be read.
// A memory failure must never fail a task.
type MemoryStore interface {
	// Append adds a record and truncates to the newest N.
	Append(ctx context.Context, record MemoryRecord) error

	// Recent returns up to n newest records, oldest first. n <= 0 means all.
	Recent(ctx context.Context, n int) ([]MemoryRecord, error)
}

// NewMemoryRecord builds the record for a finished task.
func NewMemoryRecord(state *AgentState, now time.Time) MemoryRecord {
	return MemoryRecord{
		TaskID:       state.TaskID,
		Task:         state.UserInput(),
		Plan:         state.Plan,
		Result:       state.FinalAnswer,
		CriticReview: state.CriticReview,
		CreatedAt:    now,
	}
}
