package judge

import (
	"errors"
	"fmt"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/oracle"
)

// ErrNotReproducible is returned when a verdict has no failing case.
var ErrNotReproducible = errors.New("verdict has no failing case")

// Reproduction is the first failing case of a WrongAnswer verdict, with the
// frames of the automaton running on its word.
type Reproduction struct {
	Case   Case        `json:"case"`
	Frames []fsm.Frame `json:"frames"`
}

// Reproduce regenerates the first failing case of v and replays a on it.
//
// The regenerated ground truth must match the one recorded in v; a
// difference means the script is not deterministic.
func Reproduce(s *oracle.Session, a *fsm.Automaton, v Verdict, opts ...fsm.EvalOption) (*Reproduction, error) {
	if v.Kind != KindWrongAnswer {
		return nil, fmt.Errorf("%w: verdict is %s", ErrNotReproducible, v.Kind)
	}

	c, err := TestOnce(s, a, v.FirstFailureSeed, opts...)
	if err != nil {
		return nil, fmt.Errorf("regenerate seed %d: %w", v.FirstFailureSeed, err)
	}
	if c.Expected != v.FirstFailureExpected {
		return nil, fmt.Errorf("seed %d: oracle now expects %s, verdict recorded %s",
			v.FirstFailureSeed, c.Expected, v.FirstFailureExpected)
	}

	p, err := fsm.NewPlayer(a, c.Word, opts...)
	if err != nil {
		return nil, err
	}
	frames, err := p.Frames()
	if err != nil {
		return nil, fmt.Errorf("replay seed %d: %w", v.FirstFailureSeed, err)
	}
	return &Reproduction{Case: c, Frames: frames}, nil
}
