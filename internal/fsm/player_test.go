package fsm

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoStep() *Automaton {
	return &Automaton{
		Nodes: nodes(false, true),
		Transitions: []Transition{
			NewStart(0, "1"),
			NewEdge(0, 1, "0"),
		},
	}
}

// TestPlayer_Phases tests the half-round alternation on a two-step word.
func TestPlayer_Phases(t *testing.T) {
	p, err := NewPlayer(twoStep(), "10")
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, p.Phase())

	assert.Equal(t, PhaseInFlight, p.Step())
	assert.Empty(t, p.NodeCursors())
	assert.Equal(t, []TransitionCursor{{Transition: 0, Before: "10", After: "0"}}, p.TransitionCursors())

	assert.Equal(t, PhaseArrived, p.Step())
	assert.Equal(t, []NodeCursor{{Node: 0, Remaining: "0"}}, p.NodeCursors())
	assert.Empty(t, p.TransitionCursors())

	assert.Equal(t, PhaseInFlight, p.Step())
	assert.Equal(t, []TransitionCursor{{Transition: 1, Before: "0", After: ""}}, p.TransitionCursors())

	assert.Equal(t, PhaseAccepted, p.Step())
	assert.True(t, p.Done())
	assert.Equal(t, 4, p.Steps())

	out, ok := p.Outcome()
	assert.True(t, ok)
	assert.Equal(t, Accept, out)

	// Further steps are no-ops.
	assert.Equal(t, PhaseAccepted, p.Step())
	assert.Equal(t, 4, p.Steps())
}

func TestPlayer_NoMatchingStart(t *testing.T) {
	p, err := NewPlayer(twoStep(), "0")
	require.NoError(t, err)

	assert.Equal(t, PhaseRejected, p.Step())
	out, ok := p.Outcome()
	assert.True(t, ok)
	assert.Equal(t, Reject, out)
}

func TestPlayer_InvalidAutomaton(t *testing.T) {
	_, err := NewPlayer(&Automaton{Nodes: nodes(true)}, "")
	ve, ok := AsValidityError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNoEntryLinks, ve.Code)
}

func TestPlayer_RoundLimit(t *testing.T) {
	a := &Automaton{
		Nodes:       nodes(true),
		Transitions: []Transition{NewStart(0, ""), NewSelfLoop(0, "a")},
	}

	p, err := NewPlayer(a, "aaaaaaaa", WithRoundLimit(2))
	require.NoError(t, err)

	_, err = p.Run()
	require.Error(t, err)
	assert.True(t, IsRoundLimitError(err))
	assert.Equal(t, PhaseFailed, p.Phase())
	assert.Equal(t, err, p.Err())

	_, ok := p.Outcome()
	assert.False(t, ok)
}

// TestPlayer_Frames tests the rendered frame sequence against a golden file.
func TestPlayer_Frames(t *testing.T) {
	p, err := NewPlayer(twoStep(), "10")
	require.NoError(t, err)

	frames, err := p.Frames()
	require.NoError(t, err)
	require.Len(t, frames, 5)
	assert.Equal(t, "idle", frames[0].Phase)
	assert.Equal(t, "accepted", frames[4].Phase)

	data, err := json.MarshalIndent(frames, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "player_frames_two_step", data)
}

// TestPlayer_MatchesEvaluate tests that stepping to completion agrees with
// batch evaluation over a seeded sample of random automata and words.
func TestPlayer_MatchesEvaluate(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	labels := []string{"", "a", "b", "ab", "ba", "aa"}

	checked := 0
	for checked < 300 {
		a := randomAutomaton(rng, labels)
		if Validate(a) != nil {
			continue
		}
		checked++

		for w := 0; w < 8; w++ {
			word := randomWord(rng, 7)

			want, err := Evaluate(a, word)
			require.NoError(t, err)

			p, err := NewPlayer(a, word)
			require.NoError(t, err)
			got, err := p.Run()
			require.NoError(t, err)

			if !assert.Equal(t, want, got, "word %q", word) {
				data, _ := json.Marshal(a)
				t.Logf("automaton: %s", data)
				return
			}
		}
	}
}

func randomAutomaton(rng *rand.Rand, labels []string) *Automaton {
	n := 1 + rng.IntN(4)
	a := &Automaton{Nodes: make([]Node, n)}
	for i := range a.Nodes {
		a.Nodes[i].Accept = rng.IntN(3) == 0
	}

	starts := 1 + rng.IntN(2)
	for i := 0; i < starts; i++ {
		a.Transitions = append(a.Transitions, NewStart(rng.IntN(n), labels[rng.IntN(len(labels))]))
	}
	edges := rng.IntN(2*n + 1)
	for i := 0; i < edges; i++ {
		a.Transitions = append(a.Transitions,
			NewEdge(rng.IntN(n), rng.IntN(n), labels[rng.IntN(len(labels))]))
	}
	return a
}

func randomWord(rng *rand.Rand, maxLen int) string {
	n := rng.IntN(maxLen + 1)
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = "ab"[rng.IntN(2)]
	}
	return string(buf)
}
