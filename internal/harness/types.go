package harness

import "github.com/roach88/fsmjudge/internal/judge"

// CheckOutcome records what one check produced.
type CheckOutcome struct {
	Word   string `json:"word"`
	Expect string `json:"expect"`
	// Result is Accept, Reject, or the validity code.
	Result string `json:"result"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every check and the grading expectation matched.
	Pass bool `json:"pass"`

	// Checks holds one outcome per scenario check, in order.
	Checks []CheckOutcome `json:"checks"`

	// Verdict is set when the scenario has a grading section.
	Verdict *judge.Verdict `json:"verdict,omitempty"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Checks: []CheckOutcome{},
		Errors: []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
