// Package export renders a finished task to a file.
//
// A Document is built from a finished, successful AgentState and rendered by one of
// the Renderers:
//
//	doc, err := export.FromState(state, time.Now())
//	if err != nil {
//	    return err // task failed or has not finished
//	}
//	path, err := export.WriteFile("exports", "lesson", export.Markdown{}, doc, timeProvider)
//
// File names carry a timestamp so repeated exports never overwrite each other:
// lesson_20260118_093000.md.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickchristie/lessongraph"
)

// ErrNotExportable is returned for states that failed or have not finished.
var ErrNotExportable = errors.New("task is not exportable")

// Document is the exported view of one task.
type Document struct {
	TaskID       string                     `json:"task_id" yaml:"task_id"`
	Task         string                     `json:"task" yaml:"task"`
	Plan         string                     `json:"plan" yaml:"plan"`
	FinalAnswer  string                     `json:"final_answer" yaml:"final_answer"`
	CriticReview string                     `json:"critic_review,omitempty" yaml:"critic_review,omitempty"`
	ToolLog      []lessongraph.ToolLogEntry `json:"tool_log,omitempty" yaml:"tool_log,omitempty"`
	Retries      int                        `json:"retries" yaml:"retries"`
	CreatedAt    time.Time                  `json:"created_at" yaml:"created_at"`
}

// FromState builds a Document. States with Err set, or not yet finished, are refused
// because their FinalAnswer is an error notice rather than a result.
func FromState(state *lessongraph.AgentState, now time.Time) (*Document, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: no state", ErrNotExportable)
	}
	if state.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotExportable, state.Err)
	}
	if !state.Finished {
		return nil, fmt.Errorf("%w: task has not finished", ErrNotExportable)
	}

	toolLog := make([]lessongraph.ToolLogEntry, len(state.ToolLog))
	copy(toolLog, state.ToolLog)

	return &Document{
		TaskID:       state.TaskID,
		Task:         state.UserInput(),
		Plan:         state.Plan,
		FinalAnswer:  state.FinalAnswer,
		CriticReview: state.CriticReview,
		ToolLog:      toolLog,
		Retries:      state.RetryCount,
		CreatedAt:    now,
	}, nil
}
