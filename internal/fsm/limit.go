package fsm

// DefaultRoundLimit caps the number of rounds a single simulation may take.
//
// A valid automaton can still reach it on long input: a run needs up to
// RoundBound rounds. Callers that grade long words should raise the limit
// with WithRoundLimit(RoundBound(a, word)).
const DefaultRoundLimit = 10_000

// RoundBound returns the most rounds a valid automaton can need on word.
//
// Between two consumed characters a cursor follows at most len(a.Nodes)-1
// empty-label edges, since those edges form no cycle. Add one round for the
// final accept check.
func RoundBound(a *Automaton, word string) int {
	n := max(len(a.Nodes), 1)
	return (len(word)+1)*n + 1
}

// roundLimiter counts simulation rounds and enforces a maximum.
//
// Each simulation owns its own limiter; it is not safe for concurrent use.
type roundLimiter struct {
	limit   int
	current int
}

func newRoundLimiter(limit int) *roundLimiter {
	if limit <= 0 {
		limit = DefaultRoundLimit
	}
	return &roundLimiter{limit: limit}
}

// Check counts one round and fails once the limit is exceeded.
func (l *roundLimiter) Check() error {
	l.current++
	if l.current > l.limit {
		return &RoundLimitError{Rounds: l.current, Limit: l.limit}
	}
	return nil
}

// Current returns the number of rounds counted so far.
func (l *roundLimiter) Current() int {
	return l.current
}
