package fsm

// Validate checks the automaton's structural validity.
//
// Checks run in a fixed order and stop at the first failure: entry links,
// then node references, then empty-label cycles. A nil result means the
// automaton is valid and may be simulated.
func Validate(a *Automaton) *ValidityError {
	if len(a.Starts()) == 0 {
		return NewNoEntryLinks()
	}

	if err := checkReferences(a); err != nil {
		return err
	}

	if cycle := findEpsilonCycle(a); cycle != nil {
		return NewInfiniteLoop(cycle)
	}

	return nil
}

// IsValid reports whether Validate finds no problem.
func IsValid(a *Automaton) bool {
	return Validate(a) == nil
}

// checkReferences returns the first transition whose target or source is
// out of range. The target is checked before the source.
func checkReferences(a *Automaton) *ValidityError {
	n := len(a.Nodes)
	for i, t := range a.Transitions {
		if to := t.Target(); to < 0 || to >= n {
			return NewDisjointedLink(i, to)
		}
		if from, ok := t.Source(); ok && (from < 0 || from >= n) {
			return NewDisjointedLink(i, from)
		}
	}
	return nil
}
