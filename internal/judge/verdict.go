package judge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/fsmjudge/internal/fsm"
)

// Kind discriminates the verdict variants.
type Kind string

const (
	KindOK                Kind = "Ok"
	KindWrongAnswer       Kind = "WrongAnswer"
	KindInvalidFSM        Kind = "InvalidFSM"
	KindTaskInternalError Kind = "TaskInternalError"
)

// Verdict is the outcome of grading one automaton against one task.
//
// Which fields are meaningful depends on Kind:
//   - KindOK: TotalTests
//   - KindWrongAnswer: TotalTests, Successes, FirstFailureSeed, FirstFailureExpected
//   - KindInvalidFSM: Invalid
//   - KindTaskInternalError: Message
type Verdict struct {
	Kind                 Kind
	TotalTests           int
	Successes            int
	FirstFailureSeed     int64
	FirstFailureExpected fsm.Output
	Invalid              *fsm.ValidityError
	Message              string
}

// OK is the verdict for an automaton that agreed with the oracle on all n trials.
func OK(n int) Verdict {
	return Verdict{Kind: KindOK, TotalTests: n, Successes: n}
}

// WrongAnswer is the verdict for an automaton that disagreed at least once.
func WrongAnswer(total, successes int, seed int64, expected fsm.Output) Verdict {
	return Verdict{
		Kind:                 KindWrongAnswer,
		TotalTests:           total,
		Successes:            successes,
		FirstFailureSeed:     seed,
		FirstFailureExpected: expected,
	}
}

// InvalidFSM is the verdict for a structurally invalid automaton.
func InvalidFSM(err *fsm.ValidityError) Verdict {
	return Verdict{Kind: KindInvalidFSM, Invalid: err}
}

// TaskInternalError is the verdict for a failure in the task itself.
func TaskInternalError(msg string) Verdict {
	return Verdict{Kind: KindTaskInternalError, Message: msg}
}

// Passed reports whether the verdict is Ok.
func (v Verdict) Passed() bool {
	return v.Kind == KindOK
}

// Score returns successes and total trials. Verdicts that ran no trials
// score 0 of 0.
func (v Verdict) Score() (successes, total int) {
	switch v.Kind {
	case KindOK:
		return v.TotalTests, v.TotalTests
	case KindWrongAnswer:
		return v.Successes, v.TotalTests
	default:
		return 0, 0
	}
}

// String renders the verdict for people.
func (v Verdict) String() string {
	switch v.Kind {
	case KindOK:
		return fmt.Sprintf("Ok: passed all %d tests", v.TotalTests)
	case KindWrongAnswer:
		return fmt.Sprintf("Wrong answer: passed %d of %d tests; first failure at seed %d (expected %s)",
			v.Successes, v.TotalTests, v.FirstFailureSeed, v.FirstFailureExpected)
	case KindInvalidFSM:
		if v.Invalid == nil {
			return "Invalid automaton"
		}
		return "Invalid automaton: " + v.Invalid.Error()
	case KindTaskInternalError:
		return "Task internal error: " + v.Message
	default:
		return fmt.Sprintf("unknown verdict %q", string(v.Kind))
	}
}

type wireWrongAnswer struct {
	TotalTests           int        `json:"total_tests"`
	Successes            int        `json:"successes"`
	FirstFailureSeed     int64      `json:"first_failure_seed"`
	FirstFailureExpected fsm.Output `json:"first_failure_expected_result"`
}

// MarshalJSON encodes the verdict externally tagged by kind, for example
// {"Ok":100} or {"InvalidFSM":"NoEntryLinks"}.
func (v Verdict) MarshalJSON() ([]byte, error) {
	var body any
	switch v.Kind {
	case KindOK:
		body = v.TotalTests
	case KindWrongAnswer:
		body = wireWrongAnswer{
			TotalTests:           v.TotalTests,
			Successes:            v.Successes,
			FirstFailureSeed:     v.FirstFailureSeed,
			FirstFailureExpected: v.FirstFailureExpected,
		}
	case KindInvalidFSM:
		if v.Invalid == nil {
			return nil, fmt.Errorf("InvalidFSM verdict without a validity error")
		}
		body = *v.Invalid
	case KindTaskInternalError:
		body = v.Message
	default:
		return nil, fmt.Errorf("unknown verdict kind %q", string(v.Kind))
	}
	return json.Marshal(map[string]any{string(v.Kind): body})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decode verdict: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("decode verdict: want exactly one kind, got %d", len(tagged))
	}

	for k, raw := range tagged {
		raw = bytes.TrimSpace(raw)
		switch Kind(k) {
		case KindOK:
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("decode Ok verdict: %w", err)
			}
			*v = OK(n)
		case KindWrongAnswer:
			var w wireWrongAnswer
			if err := json.Unmarshal(raw, &w); err != nil {
				return fmt.Errorf("decode WrongAnswer verdict: %w", err)
			}
			*v = WrongAnswer(w.TotalTests, w.Successes, w.FirstFailureSeed, w.FirstFailureExpected)
		case KindInvalidFSM:
			var ve fsm.ValidityError
			if err := json.Unmarshal(raw, &ve); err != nil {
				return fmt.Errorf("decode InvalidFSM verdict: %w", err)
			}
			*v = InvalidFSM(&ve)
		case KindTaskInternalError:
			var msg string
			if err := json.Unmarshal(raw, &msg); err != nil {
				return fmt.Errorf("decode TaskInternalError verdict: %w", err)
			}
			*v = TaskInternalError(msg)
		default:
			return fmt.Errorf("decode verdict: unknown kind %q", k)
		}
	}
	return nil
}

// Equal compares two verdicts by their serialized content.
func (v Verdict) Equal(other Verdict) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindOK:
		return v.TotalTests == other.TotalTests
	case KindWrongAnswer:
		return v.TotalTests == other.TotalTests &&
			v.Successes == other.Successes &&
			v.FirstFailureSeed == other.FirstFailureSeed &&
			v.FirstFailureExpected == other.FirstFailureExpected
	case KindInvalidFSM:
		return v.Invalid.Equal(other.Invalid)
	default:
		return v.Message == other.Message
	}
}
