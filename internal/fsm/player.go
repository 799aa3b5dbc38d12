package fsm

import (
	"strings"
)

// Phase describes where a Player stands after a step.
type Phase int

const (
	// PhaseIdle: Step has not been called yet.
	PhaseIdle Phase = iota
	// PhaseInFlight: transition cursors are active; node cursors are empty.
	PhaseInFlight
	// PhaseArrived: node cursors are active; transition cursors are empty.
	PhaseArrived
	// PhaseAccepted: a cursor arrived on an accepting node with no input left.
	PhaseAccepted
	// PhaseRejected: no cursor survived.
	PhaseRejected
	// PhaseFailed: the round limit was exceeded.
	PhaseFailed
)

// String returns a short phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInFlight:
		return "in-flight"
	case PhaseArrived:
		return "arrived"
	case PhaseAccepted:
		return "accepted"
	case PhaseRejected:
		return "rejected"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further steps will change the player.
func (p Phase) Terminal() bool {
	return p == PhaseAccepted || p == PhaseRejected || p == PhaseFailed
}

// Frame is a snapshot of a Player for rendering one animation frame.
type Frame struct {
	Step        int                `json:"step"`
	Phase       string             `json:"phase"`
	Nodes       []NodeCursor       `json:"nodes"`
	Transitions []TransitionCursor `json:"transitions"`
}

// Player runs the simulation one half-round at a time.
//
// The first Step seeds transition cursors from the Start transitions whose
// label prefixes the word. After that, steps alternate between promoting
// transition cursors to node cursors (and checking for acceptance) and
// expanding node cursors into the transitions they can take. Driving a
// Player to a terminal phase yields the same outcome as Evaluate.
//
// A Player is owned by a single caller and is not safe for concurrent use.
type Player struct {
	automaton *Automaton
	outgoing  [][]int
	word      string

	nodes       []NodeCursor
	transitions []TransitionCursor

	phase   Phase
	steps   int
	limiter *roundLimiter
	err     error
}

// NewPlayer validates a and returns a Player positioned before the first
// step. A validity problem is returned as a *ValidityError.
func NewPlayer(a *Automaton, word string, opts ...EvalOption) (*Player, error) {
	if verr := Validate(a); verr != nil {
		return nil, verr
	}
	cfg := newEvalConfig(opts)
	return &Player{
		automaton: a,
		outgoing:  a.outgoing(),
		word:      word,
		limiter:   newRoundLimiter(cfg.roundLimit),
	}, nil
}

// Word returns the input being simulated.
func (p *Player) Word() string { return p.word }

// Phase returns the current phase.
func (p *Player) Phase() Phase { return p.phase }

// Steps returns how many times Step has advanced the player.
func (p *Player) Steps() int { return p.steps }

// Done reports whether the player has reached a terminal phase.
func (p *Player) Done() bool { return p.phase.Terminal() }

// Err returns the round-limit error once the player has failed.
func (p *Player) Err() error { return p.err }

// NodeCursors returns the cursors that have arrived at nodes.
func (p *Player) NodeCursors() []NodeCursor {
	out := make([]NodeCursor, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// TransitionCursors returns the cursors currently crossing transitions.
func (p *Player) TransitionCursors() []TransitionCursor {
	out := make([]TransitionCursor, len(p.transitions))
	copy(out, p.transitions)
	return out
}

// Outcome returns the decision once the player accepted or rejected.
func (p *Player) Outcome() (Output, bool) {
	switch p.phase {
	case PhaseAccepted:
		return Accept, true
	case PhaseRejected:
		return Reject, true
	default:
		return Reject, false
	}
}

// Snapshot returns the current frame.
func (p *Player) Snapshot() Frame {
	return Frame{
		Step:        p.steps,
		Phase:       p.phase.String(),
		Nodes:       p.NodeCursors(),
		Transitions: p.TransitionCursors(),
	}
}

// Step advances one half-round and returns the new phase. Calling Step on
// a finished player is a no-op.
func (p *Player) Step() Phase {
	if p.Done() {
		return p.phase
	}
	p.steps++

	switch p.phase {
	case PhaseIdle:
		p.seed()
	case PhaseInFlight:
		p.promote()
	case PhaseArrived:
		p.advance()
	}
	return p.phase
}

// Run steps until a terminal phase and returns the outcome, or the
// round-limit error if the player failed.
func (p *Player) Run() (Output, error) {
	for !p.Done() {
		p.Step()
	}
	if p.err != nil {
		return Reject, p.err
	}
	out, _ := p.Outcome()
	return out, nil
}

// Frames runs the player to completion and returns every frame, starting
// with the idle one.
func (p *Player) Frames() ([]Frame, error) {
	frames := []Frame{p.Snapshot()}
	for !p.Done() {
		p.Step()
		frames = append(frames, p.Snapshot())
	}
	return frames, p.err
}

// seed creates transition cursors from matching Start transitions.
func (p *Player) seed() {
	for i, t := range p.automaton.Transitions {
		if t.Kind() != KindStart {
			continue
		}
		if rest, ok := strings.CutPrefix(p.word, t.Label()); ok {
			p.transitions = append(p.transitions, TransitionCursor{
				Transition: i,
				Before:     p.word,
				After:      rest,
			})
		}
	}
	if len(p.transitions) == 0 {
		p.phase = PhaseRejected
		return
	}
	p.phase = PhaseInFlight
}

// promote lands every transition cursor on its target node and checks for
// acceptance. One promotion is one simulation round.
func (p *Player) promote() {
	if err := p.limiter.Check(); err != nil {
		p.err = err
		p.phase = PhaseFailed
		return
	}

	type key struct{ node, left int }
	seen := make(map[key]bool)

	p.nodes = p.nodes[:0]
	for _, tc := range p.transitions {
		target := p.automaton.Transitions[tc.Transition].Target()
		k := key{target, len(tc.After)}
		if seen[k] {
			continue
		}
		seen[k] = true
		p.nodes = append(p.nodes, NodeCursor{Node: target, Remaining: tc.After})
	}
	p.transitions = nil

	for _, nc := range p.nodes {
		if nc.Remaining == "" && p.automaton.Nodes[nc.Node].Accept {
			p.phase = PhaseAccepted
			return
		}
	}
	p.phase = PhaseArrived
}

// advance turns node cursors with input left into transition cursors for
// every edge whose label prefixes that input.
func (p *Player) advance() {
	var next []TransitionCursor
	for _, nc := range p.nodes {
		if nc.Remaining == "" {
			continue
		}
		for _, idx := range p.outgoing[nc.Node] {
			t := p.automaton.Transitions[idx]
			if rest, ok := strings.CutPrefix(nc.Remaining, t.Label()); ok {
				next = append(next, TransitionCursor{
					Transition: idx,
					Before:     nc.Remaining,
					After:      rest,
				})
			}
		}
	}

	p.nodes = nil
	p.transitions = next
	if len(next) == 0 {
		p.phase = PhaseRejected
		return
	}
	p.phase = PhaseInFlight
}
