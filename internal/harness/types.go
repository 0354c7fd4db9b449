package harness

import (
	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/gesture"
)

// TraceEvent records one dispatched event and what became of it.
type TraceEvent struct {
	Seq     int64         `json:"seq"`
	Phase   string        `json:"phase"` // "setup" or "flow"
	Event   gesture.Event `json:"event"`
	Outcome string        `json:"outcome"`
	TaskID  string        `json:"task_id,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause, invariant check and assertion
	// held.
	Pass bool `json:"pass"`

	// Trace lists dispatched events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed check. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Board is the final board.
	Board *board.Board `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a dispatched event to the trace.
func (r *Result) AddTrace(seq int64, phase string, ev gesture.Event, outcome, taskID string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     seq,
		Phase:   phase,
		Event:   ev,
		Outcome: outcome,
		TaskID:  taskID,
	})
}
