package fsm

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Output is the automaton's decision on a word.
type Output int

const (
	// Reject means no cursor ended on an accepting node with empty input.
	Reject Output = iota
	// Accept means some cursor ended on an accepting node with empty input.
	Accept
)

// OutputOf converts a membership answer into an Output.
func OutputOf(accepted bool) Output {
	if accepted {
		return Accept
	}
	return Reject
}

// Bool reports whether o is Accept.
func (o Output) Bool() bool {
	return o == Accept
}

// String returns "Accept" or "Reject".
func (o Output) String() string {
	if o == Accept {
		return "Accept"
	}
	return "Reject"
}

// MarshalJSON encodes the output as "Accept" or "Reject".
func (o Output) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes "Accept" or "Reject".
func (o *Output) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	out, err := ParseOutput(s)
	if err != nil {
		return err
	}
	*o = out
	return nil
}

// ParseOutput parses "Accept" or "Reject" (case-insensitive).
func ParseOutput(s string) (Output, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return Accept, nil
	case "reject":
		return Reject, nil
	default:
		return Reject, fmt.Errorf("invalid output %q, must be \"Accept\" or \"Reject\"", s)
	}
}

// NodeCursor is a simulation position: a node and the input left to read.
type NodeCursor struct {
	Node      int    `json:"node"`
	Remaining string `json:"remaining"`
}

// TransitionCursor is a transition being taken. Before is the input left
// when the transition was entered, After the input left once its label has
// been consumed.
type TransitionCursor struct {
	Transition int    `json:"transition"`
	Before     string `json:"before"`
	After      string `json:"after"`
}

// EvalOption configures a simulation.
type EvalOption func(*evalConfig)

type evalConfig struct {
	roundLimit int
	logger     *slog.Logger
}

func newEvalConfig(opts []EvalOption) evalConfig {
	cfg := evalConfig{
		roundLimit: DefaultRoundLimit,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRoundLimit overrides DefaultRoundLimit.
func WithRoundLimit(n int) EvalOption {
	return func(c *evalConfig) {
		c.roundLimit = n
	}
}

// WithLogger sets the logger used for debug traces and limit failures.
func WithLogger(l *slog.Logger) EvalOption {
	return func(c *evalConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Evaluate validates the automaton and decides whether it accepts word.
//
// A validity problem is returned as a *ValidityError and the Output is
// Reject.
func Evaluate(a *Automaton, word string, opts ...EvalOption) (Output, error) {
	if verr := Validate(a); verr != nil {
		return Reject, verr
	}
	return EvaluateUnchecked(a, word, opts...)
}

// EvaluateUnchecked decides whether a accepts word without validating it.
//
// Callers must have validated a once beforehand; the judge uses this path
// for every trial after a single up-front check. Node references are
// assumed to be in range.
func EvaluateUnchecked(a *Automaton, word string, opts ...EvalOption) (Output, error) {
	cfg := newEvalConfig(opts)

	starts := a.Starts()
	if len(starts) == 0 {
		return Reject, NewNoEntryLinks()
	}

	var cursors []NodeCursor
	for _, idx := range starts {
		t := a.Transitions[idx]
		if rest, ok := strings.CutPrefix(word, t.Label()); ok {
			cursors = append(cursors, NodeCursor{Node: t.Target(), Remaining: rest})
		}
	}

	outgoing := a.outgoing()
	limiter := newRoundLimiter(cfg.roundLimit)

	for {
		if err := limiter.Check(); err != nil {
			cfg.logger.Error("simulation round limit exceeded",
				"word_len", len(word),
				"nodes", len(a.Nodes),
				"transitions", len(a.Transitions),
				"limit", cfg.roundLimit,
			)
			return Reject, err
		}

		for _, c := range cursors {
			if c.Remaining == "" && a.Nodes[c.Node].Accept {
				return Accept, nil
			}
		}

		live := cursors[:0]
		for _, c := range cursors {
			if c.Remaining != "" {
				live = append(live, c)
			}
		}

		if len(live) == 0 {
			return Reject, nil
		}

		cursors = expand(a, outgoing, live)
		cfg.logger.Debug("simulation round", "round", limiter.Current(), "cursors", len(cursors))
	}
}

// expand follows every matching edge out of every cursor. Cursors that
// reach the same node with the same amount of input left are merged; they
// would behave identically from here on.
func expand(a *Automaton, outgoing [][]int, cursors []NodeCursor) []NodeCursor {
	type key struct{ node, left int }
	seen := make(map[key]bool)

	var next []NodeCursor
	for _, c := range cursors {
		for _, idx := range outgoing[c.Node] {
			t := a.Transitions[idx]
			rest, ok := strings.CutPrefix(c.Remaining, t.Label())
			if !ok {
				continue
			}
			k := key{t.Target(), len(rest)}
			if seen[k] {
				continue
			}
			seen[k] = true
			next = append(next, NodeCursor{Node: t.Target(), Remaining: rest})
		}
	}
	return next
}
