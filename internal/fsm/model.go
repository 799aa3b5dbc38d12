package fsm

// Node is a single automaton state.
//
// Only Accept is read by simulation. X, Y and Text belong to the diagram
// editor and are carried through serialization untouched.
type Node struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Text   string `json:"text"`
	Accept bool   `json:"isAcceptState"`
}

// Kind discriminates the transition variants.
type Kind int

const (
	// KindStart is a sourceless entry transition.
	KindStart Kind = iota
	// KindEdge connects a source node to a target node (possibly the same one).
	KindEdge
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// Transition is the closed set of transition variants: Start and Edge.
//
// Algorithms dispatch on the concrete type with an exhaustive type switch;
// the unexported marker keeps the set closed to this package.
type Transition interface {
	// Kind reports which variant this is.
	Kind() Kind
	// Source returns the source node, or false for a Start transition.
	Source() (int, bool)
	// Target returns the node this transition leads to.
	Target() int
	// Label returns the literal text consumed by this transition.
	Label() string

	transition()
}

// StartLayout holds the editor-only geometry of a start arrow.
type StartLayout struct {
	DeltaX int `json:"deltaX"`
	DeltaY int `json:"deltaY"`
}

// Start is an entry transition. It has no source node and is only matched
// against the beginning of the input.
type Start struct {
	To     int
	Text   string
	Layout StartLayout
}

// Kind implements Transition.
func (Start) Kind() Kind { return KindStart }

// Source implements Transition. Start transitions have no source.
func (Start) Source() (int, bool) { return 0, false }

// Target implements Transition.
func (s Start) Target() int { return s.To }

// Label implements Transition.
func (s Start) Label() string { return s.Text }

func (Start) transition() {}

// EdgeLayout holds the editor-only geometry of an edge.
//
// Self is set for edges drawn as self-loops; AnchorAngle only applies to
// them. The remaining fields describe the curve of an ordinary link.
type EdgeLayout struct {
	Self              bool
	AnchorAngle       float64
	LineAngleAdjust   float64
	ParallelPart      float64
	PerpendicularPart float64
}

// Edge connects From to To. A self-loop has From == To.
type Edge struct {
	From   int
	To     int
	Text   string
	Layout EdgeLayout
}

// Kind implements Transition.
func (Edge) Kind() Kind { return KindEdge }

// Source implements Transition.
func (e Edge) Source() (int, bool) { return e.From, true }

// Target implements Transition.
func (e Edge) Target() int { return e.To }

// Label implements Transition.
func (e Edge) Label() string { return e.Text }

func (Edge) transition() {}

// IsEpsilon reports whether t consumes no input.
func IsEpsilon(t Transition) bool {
	return t.Label() == ""
}

// Automaton is an ordered sequence of nodes and transitions.
//
// Nodes are identified by their index in Nodes. The zero value is an empty
// automaton, which is invalid (it has no entry transitions).
type Automaton struct {
	Nodes       []Node
	Transitions []Transition
}

// NewStart returns a Start transition into node to.
func NewStart(to int, label string) Start {
	return Start{To: to, Text: label}
}

// NewEdge returns an Edge from node from to node to.
func NewEdge(from, to int, label string) Edge {
	return Edge{From: from, To: to, Text: label, Layout: EdgeLayout{Self: from == to}}
}

// NewSelfLoop returns an Edge from node n back to itself.
func NewSelfLoop(n int, label string) Edge {
	return Edge{From: n, To: n, Text: label, Layout: EdgeLayout{Self: true}}
}

// Starts returns the indices of all Start transitions in declaration order.
func (a *Automaton) Starts() []int {
	var out []int
	for i, t := range a.Transitions {
		if t.Kind() == KindStart {
			out = append(out, i)
		}
	}
	return out
}

// outgoing indexes Edge transitions by source node, preserving declaration
// order. Out-of-range sources are skipped; callers validate first.
func (a *Automaton) outgoing() [][]int {
	out := make([][]int, len(a.Nodes))
	for i, t := range a.Transitions {
		switch t := t.(type) {
		case Start:
			continue
		case Edge:
			if t.From >= 0 && t.From < len(out) {
				out[t.From] = append(out[t.From], i)
			}
		}
	}
	return out
}

// Clone returns a deep copy of the automaton.
func (a *Automaton) Clone() *Automaton {
	c := &Automaton{
		Nodes:       make([]Node, len(a.Nodes)),
		Transitions: make([]Transition, len(a.Transitions)),
	}
	copy(c.Nodes, a.Nodes)
	copy(c.Transitions, a.Transitions)
	return c
}
