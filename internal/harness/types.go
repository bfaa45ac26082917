package harness

import (
	"github.com/roach88/holdjudge/internal/ir"
	"github.com/roach88/holdjudge/internal/tracking"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Errors []string `json:"errors,omitempty"`

	SessionID string `json:"session_id"`

	// Results is the live judgement stream, reverted results removed.
	Results []ir.JudgementResult `json:"results"`

	// Trace is the canonical stream of results and reverts in seq order.
	Trace     ir.IRArray `json:"-"`
	TraceHash string     `json:"trace_hash"`

	Combo ir.ComboResult `json:"combo"`

	// Tracking holds each note's tracking history by note ID.
	Tracking map[int][]tracking.Entry `json:"tracking"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Results:  []ir.JudgementResult{},
		Tracking: make(map[int][]tracking.Entry),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Reverts counts the revert events in the trace.
func (r *Result) Reverts() int {
	n := 0
	for _, ev := range r.Trace {
		if obj, ok := ev.(ir.IRObject); ok && obj.IsRevert() {
			n++
		}
	}
	return n
}
