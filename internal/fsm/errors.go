package fsm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel kinds for the validity taxonomy. A *ValidityError unwraps to
// exactly one of these.
var (
	ErrNoEntryLinks   = errors.New("this finite state machine has no entry links")
	ErrDisjointedLink = errors.New("a link points at a node that does not exist")
	ErrInfiniteLoop   = errors.New("this finite state machine contains an infinite loop")
)

// ValidityCode identifies a structural validity failure.
type ValidityCode string

const (
	// CodeNoEntryLinks: the automaton has no Start transition.
	CodeNoEntryLinks ValidityCode = "NoEntryLinks"

	// CodeDisjointedLink: a transition references a node index that does not exist.
	CodeDisjointedLink ValidityCode = "DisjointedLink"

	// CodeInfiniteLoop: empty-label edges form a cycle.
	CodeInfiniteLoop ValidityCode = "InfiniteLoop"
)

// ValidityError is a structural problem in a student's automaton.
//
// Transition and Node are only meaningful for CodeDisjointedLink. Cycle is
// a witness path (first node repeated at the end) for CodeInfiniteLoop
// when the static check found it; it is informational and not serialized.
type ValidityError struct {
	Code       ValidityCode
	Transition int
	Node       int
	Cycle      []int
}

// NewNoEntryLinks returns a NoEntryLinks validity error.
func NewNoEntryLinks() *ValidityError {
	return &ValidityError{Code: CodeNoEntryLinks}
}

// NewDisjointedLink returns a DisjointedLink error for transition t
// pointing at the missing node n.
func NewDisjointedLink(t, n int) *ValidityError {
	return &ValidityError{Code: CodeDisjointedLink, Transition: t, Node: n}
}

// NewInfiniteLoop returns an InfiniteLoop error with an optional cycle witness.
func NewInfiniteLoop(cycle []int) *ValidityError {
	return &ValidityError{Code: CodeInfiniteLoop, Cycle: cycle}
}

// Error implements the error interface. Messages are shown to students.
func (e *ValidityError) Error() string {
	switch e.Code {
	case CodeNoEntryLinks:
		return ErrNoEntryLinks.Error()
	case CodeDisjointedLink:
		return fmt.Sprintf("link %d points at node %d, which does not exist", e.Transition, e.Node)
	case CodeInfiniteLoop:
		if len(e.Cycle) > 0 {
			parts := make([]string, len(e.Cycle))
			for i, n := range e.Cycle {
				parts[i] = strconv.Itoa(n)
			}
			return fmt.Sprintf("%s: empty links form a cycle through nodes %s",
				ErrInfiniteLoop.Error(), strings.Join(parts, " -> "))
		}
		return ErrInfiniteLoop.Error()
	default:
		return fmt.Sprintf("unknown validity error %q", string(e.Code))
	}
}

// Unwrap returns the sentinel for this error's code.
func (e *ValidityError) Unwrap() error {
	switch e.Code {
	case CodeNoEntryLinks:
		return ErrNoEntryLinks
	case CodeDisjointedLink:
		return ErrDisjointedLink
	case CodeInfiniteLoop:
		return ErrInfiniteLoop
	default:
		return nil
	}
}

// Equal compares two validity errors by their serialized content.
func (e *ValidityError) Equal(other *ValidityError) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Code != other.Code {
		return false
	}
	if e.Code == CodeDisjointedLink {
		return e.Transition == other.Transition && e.Node == other.Node
	}
	return true
}

// MarshalJSON encodes the error as "NoEntryLinks", "InfiniteLoop" or
// {"DisjointedLink":[transition,node]}.
func (e ValidityError) MarshalJSON() ([]byte, error) {
	switch e.Code {
	case CodeNoEntryLinks, CodeInfiniteLoop:
		return json.Marshal(string(e.Code))
	case CodeDisjointedLink:
		return json.Marshal(map[string][2]int{
			string(CodeDisjointedLink): {e.Transition, e.Node},
		})
	default:
		return nil, fmt.Errorf("unknown validity code %q", string(e.Code))
	}
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (e *ValidityError) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var code string
		if err := json.Unmarshal(data, &code); err != nil {
			return err
		}
		switch ValidityCode(code) {
		case CodeNoEntryLinks, CodeInfiniteLoop:
			*e = ValidityError{Code: ValidityCode(code)}
			return nil
		default:
			return fmt.Errorf("unknown validity error %q", code)
		}
	}

	var tagged map[string][2]int
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decode validity error: %w", err)
	}
	pair, ok := tagged[string(CodeDisjointedLink)]
	if !ok || len(tagged) != 1 {
		return fmt.Errorf("unknown validity error %s", string(data))
	}
	*e = ValidityError{Code: CodeDisjointedLink, Transition: pair[0], Node: pair[1]}
	return nil
}

// AsValidityError extracts a *ValidityError from err, if there is one.
func AsValidityError(err error) (*ValidityError, bool) {
	var ve *ValidityError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// RoundLimitError is returned when a simulation exceeds its round budget.
//
// It unwraps to ErrInfiniteLoop so callers that only care about the
// validity taxonomy see it as an infinite loop.
type RoundLimitError struct {
	Rounds int
	Limit  int
}

// Error implements the error interface.
func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("simulation exceeded round limit: %d rounds > %d limit", e.Rounds, e.Limit)
}

// Unwrap returns ErrInfiniteLoop.
func (e *RoundLimitError) Unwrap() error {
	return ErrInfiniteLoop
}

// IsRoundLimitError returns true if err is, or wraps, a RoundLimitError.
func IsRoundLimitError(err error) bool {
	var rl *RoundLimitError
	return errors.As(err, &rl)
}
