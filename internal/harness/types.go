package harness

import "github.com/roach88/variants/internal/variant"

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Seq    int    `json:"seq"`
	Action string `json:"action"`

	// Count is the list length after regenerate or bulk, or the number of
	// matches for search and filter.
	Count int `json:"count"`

	Kept    int      `json:"kept,omitempty"`
	Created int      `json:"created,omitempty"`
	Dropped int      `json:"dropped,omitempty"`
	Updated int      `json:"updated,omitempty"`
	Unknown []string `json:"unknown,omitempty"`

	// IDs are the matched combination IDs of a search or filter.
	IDs []string `json:"ids,omitempty"`

	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the combination list after the last step.
	Final []variant.Combination `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  []variant.Combination{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event, numbering it from 1.
func (r *Result) AddTrace(event TraceEvent) {
	event.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, event)
}
