package harness

import (
	"github.com/roach88/enums/internal/ir"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq   int64    `json:"seq"`
	Op    string   `json:"op"`
	Enum  string   `json:"enum"`
	Input ir.Array `json:"input,omitempty"`

	// Member is the String() form of the resulting member, if any.
	Member string   `json:"member,omitempty"`
	Value  ir.Value `json:"value,omitempty"`
	Named  bool     `json:"named,omitempty"`

	// Members and Uncovered are set by decompose.
	Members   []string `json:"members,omitempty"`
	Uncovered *int64   `json:"uncovered,omitempty"`

	// Result is set by has.
	Result *bool `json:"result,omitempty"`

	// Error is the code of a failed step.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every step in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
