package fsm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_NoStartTransition(t *testing.T) {
	a := &Automaton{Nodes: nodes(true)}

	out, err := Evaluate(a, "x")
	require.Error(t, err)
	assert.Equal(t, Reject, out)

	ve, ok := AsValidityError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNoEntryLinks, ve.Code)
}

func TestEvaluate_EmptyStartIntoAccepting(t *testing.T) {
	a := &Automaton{
		Nodes:       nodes(true),
		Transitions: []Transition{NewStart(0, "")},
	}

	out, err := Evaluate(a, "")
	require.NoError(t, err)
	assert.Equal(t, Accept, out)

	out, err = Evaluate(a, "x")
	require.NoError(t, err)
	assert.Equal(t, Reject, out)
}

func TestEvaluate_TwoStepWord(t *testing.T) {
	a := &Automaton{
		Nodes: nodes(false, true),
		Transitions: []Transition{
			NewStart(0, "1"),
			NewEdge(0, 1, "0"),
		},
	}

	out, err := Evaluate(a, "10")
	require.NoError(t, err)
	assert.Equal(t, Accept, out)

	out, err = Evaluate(a, "1")
	require.NoError(t, err)
	assert.Equal(t, Reject, out)
}

func TestEvaluate_EpsilonSelfLoopIsInvalid(t *testing.T) {
	a := &Automaton{
		Nodes:       nodes(true),
		Transitions: []Transition{NewStart(0, ""), NewSelfLoop(0, "")},
	}

	for _, word := range []string{"", "a", "abc"} {
		_, err := Evaluate(a, word)
		ve, ok := AsValidityError(err)
		require.True(t, ok, "word %q", word)
		assert.Equal(t, CodeInfiniteLoop, ve.Code)
	}
}

func TestEvaluate_MultiCharacterLabels(t *testing.T) {
	a := &Automaton{
		Nodes: nodes(false, true),
		Transitions: []Transition{
			NewStart(0, "ab"),
			NewEdge(0, 1, "cd"),
			NewSelfLoop(1, "cd"),
		},
	}

	cases := map[string]Output{
		"abcd":     Accept,
		"abcdcd":   Accept,
		"abc":      Reject,
		"abcdc":    Reject,
		"cdab":     Reject,
		"":         Reject,
		"abcdcdcd": Accept,
	}
	for word, want := range cases {
		out, err := Evaluate(a, word)
		require.NoError(t, err)
		assert.Equal(t, want, out, "word %q", word)
	}
}

func TestEvaluate_NonDeterministicBranching(t *testing.T) {
	// Words over {a,b} ending in "ab".
	a := &Automaton{
		Nodes: nodes(false, false, true),
		Transitions: []Transition{
			NewStart(0, ""),
			NewSelfLoop(0, "a"),
			NewSelfLoop(0, "b"),
			NewEdge(0, 1, "a"),
			NewEdge(1, 2, "b"),
		},
	}

	cases := map[string]Output{
		"ab":    Accept,
		"aab":   Accept,
		"babab": Accept,
		"ba":    Reject,
		"abb":   Reject,
		"":      Reject,
	}
	for word, want := range cases {
		out, err := Evaluate(a, word)
		require.NoError(t, err)
		assert.Equal(t, want, out, "word %q", word)
	}
}

func TestEvaluate_EpsilonEdgesAcrossNodes(t *testing.T) {
	a := &Automaton{
		Nodes: nodes(false, false, true),
		Transitions: []Transition{
			NewStart(0, "x"),
			NewEdge(0, 1, ""),
			NewEdge(1, 2, "y"),
		},
	}

	out, err := Evaluate(a, "xy")
	require.NoError(t, err)
	assert.Equal(t, Accept, out)
}

// A cursor that runs out of input on a non-accepting node is dropped even
// if an empty-label edge would lead it to an accepting node.
func TestEvaluate_EmptyInputDoesNotFollowEpsilon(t *testing.T) {
	a := &Automaton{
		Nodes: nodes(false, true),
		Transitions: []Transition{
			NewStart(0, "a"),
			NewEdge(0, 1, ""),
		},
	}

	out, err := Evaluate(a, "a")
	require.NoError(t, err)
	assert.Equal(t, Reject, out)
}

func TestEvaluate_MultipleStarts(t *testing.T) {
	a := &Automaton{
		Nodes: nodes(true, false, true),
		Transitions: []Transition{
			NewStart(0, "left"),
			NewStart(1, "ri"),
			NewEdge(1, 2, "ght"),
		},
	}

	for _, word := range []string{"left", "right"} {
		out, err := Evaluate(a, word)
		require.NoError(t, err)
		assert.Equal(t, Accept, out, "word %q", word)
	}
	out, err := Evaluate(a, "ri")
	require.NoError(t, err)
	assert.Equal(t, Reject, out)
}

func TestEvaluateUnchecked_RoundLimit(t *testing.T) {
	// Valid, but each round consumes a single character.
	a := &Automaton{
		Nodes:       nodes(true),
		Transitions: []Transition{NewStart(0, ""), NewSelfLoop(0, "a")},
	}

	_, err := EvaluateUnchecked(a, "aaaaaaaaaa", WithRoundLimit(3))
	require.Error(t, err)
	assert.True(t, IsRoundLimitError(err))
	assert.ErrorIs(t, err, ErrInfiniteLoop)

	var rl *RoundLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 4, rl.Rounds)
	assert.Equal(t, 3, rl.Limit)
}

// TestRoundBound tests that a valid automaton can outrun the default cap on
// a long word, and that RoundBound is enough to finish it.
func TestRoundBound(t *testing.T) {
	tests := []struct {
		name string
		a    *Automaton
	}{
		{
			name: "empty start then self-loop",
			a: &Automaton{
				Nodes:       nodes(true),
				Transitions: []Transition{NewStart(0, ""), NewSelfLoop(0, "1")},
			},
		},
		{
			name: "empty chain before every character",
			a: &Automaton{
				Nodes: nodes(false, false, true),
				Transitions: []Transition{
					NewStart(0, ""),
					NewEdge(0, 1, ""),
					NewEdge(1, 2, "1"),
					NewEdge(2, 0, ""),
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word := strings.Repeat("1", DefaultRoundLimit)
			require.Nil(t, Validate(tt.a))

			_, err := EvaluateUnchecked(tt.a, word)
			assert.True(t, IsRoundLimitError(err))

			out, err := EvaluateUnchecked(tt.a, word, WithRoundLimit(RoundBound(tt.a, word)))
			require.NoError(t, err)
			assert.Equal(t, Accept, out)
		})
	}
}

func TestEvaluateUnchecked_NoStarts(t *testing.T) {
	_, err := EvaluateUnchecked(&Automaton{Nodes: nodes(true)}, "")
	ve, ok := AsValidityError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNoEntryLinks, ve.Code)
}

func TestEvaluate_ParallelEdgesDoNotExplode(t *testing.T) {
	// Ten parallel "a" self-loops would produce 10^n cursors without merging.
	trans := []Transition{NewStart(0, "")}
	for i := 0; i < 10; i++ {
		trans = append(trans, NewSelfLoop(0, "a"))
	}
	trans = append(trans, NewEdge(0, 1, "b"))
	a := &Automaton{Nodes: nodes(false, true), Transitions: trans}

	word := ""
	for i := 0; i < 200; i++ {
		word += "a"
	}

	out, err := Evaluate(a, word+"b")
	require.NoError(t, err)
	assert.Equal(t, Accept, out)
}

func TestOutput(t *testing.T) {
	assert.True(t, Accept.Bool())
	assert.False(t, Reject.Bool())
	assert.Equal(t, Accept, OutputOf(true))
	assert.Equal(t, Reject, OutputOf(false))

	out, err := ParseOutput("accept")
	require.NoError(t, err)
	assert.Equal(t, Accept, out)

	_, err = ParseOutput("maybe")
	assert.Error(t, err)

	data, err := Accept.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"Accept"`, string(data))
}
