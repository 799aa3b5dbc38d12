package testutil

import "github.com/roach88/fsmjudge/internal/fsm"

// OnesScript is an oracle for the language of non-empty words made only of
// "1". Rejected words are drawn over {0, 1} and never empty.
const OnesScript = `
def check_word(word):
    if word == "":
        return False
    for c in word.elems():
        if c != "1":
            return False
    return True

def gen_word(ok):
    n = rng.gen_range(1, 20)
    if ok:
        return "1" * n
    word = ""
    for i in range(n):
        word += rng.choice("01")
    if check_word(word):
        word += "0"
    return word
`

// BrokenScript fails the oracle self-check: its accepting generator
// produces a word its oracle rejects.
const BrokenScript = `
def check_word(word):
    return word == "1"

def gen_word(ok):
    return "0"
`

// Ones accepts exactly the language of OnesScript.
func Ones() *fsm.Automaton {
	return &fsm.Automaton{
		Nodes: []fsm.Node{{Text: "ones", Accept: true}},
		Transitions: []fsm.Transition{
			fsm.NewStart(0, "1"),
			fsm.NewSelfLoop(0, "1"),
		},
	}
}

// AcceptAll accepts every word over {0, 1}.
func AcceptAll() *fsm.Automaton {
	return &fsm.Automaton{
		Nodes: []fsm.Node{{Text: "any", Accept: true}},
		Transitions: []fsm.Transition{
			fsm.NewStart(0, ""),
			fsm.NewSelfLoop(0, "0"),
			fsm.NewSelfLoop(0, "1"),
		},
	}
}

// SingleOne accepts only the word "1".
func SingleOne() *fsm.Automaton {
	return &fsm.Automaton{
		Nodes: []fsm.Node{{Text: "one", Accept: true}},
		Transitions: []fsm.Transition{
			fsm.NewStart(0, "1"),
		},
	}
}

// NoEntry has no start transition.
func NoEntry() *fsm.Automaton {
	return &fsm.Automaton{
		Nodes: []fsm.Node{{Accept: true}},
		Transitions: []fsm.Transition{
			fsm.NewSelfLoop(0, "1"),
		},
	}
}
