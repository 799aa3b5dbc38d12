package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/judge"
)

// marshalVerdict converts a verdict to its tagged JSON TEXT for storage.
func marshalVerdict(v judge.Verdict) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal verdict: %w", err)
	}
	return string(data), nil
}

// unmarshalVerdict parses verdict TEXT written by marshalVerdict.
func unmarshalVerdict(data string) (judge.Verdict, error) {
	var v judge.Verdict
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return judge.Verdict{}, fmt.Errorf("unmarshal verdict: %w", err)
	}
	return v, nil
}

// marshalSolution stores the automaton in the editor's wire form so the
// client can load it back unchanged, layout included.
func marshalSolution(a *fsm.Automaton) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal solution: %w", err)
	}
	return string(data), nil
}

// unmarshalSolution parses solution TEXT written by marshalSolution.
func unmarshalSolution(data string) (*fsm.Automaton, error) {
	a, err := fsm.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal solution: %w", err)
	}
	return a, nil
}
