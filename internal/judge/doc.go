// Package judge grades automata against scripted oracles.
//
// A grading run validates the automaton once, derives one seed per trial
// from the master seed, and for each trial asks the oracle for a word and
// its ground truth and compares the automaton's answer. The result is a
// Verdict:
//
//	Ok(n)              every trial agreed
//	WrongAnswer{...}   some trial disagreed; the first seed is kept
//	InvalidFSM(err)    the automaton is structurally invalid
//	TaskInternalError  the task's script failed
//
// The same automaton, script and master seed always produce the same
// verdict, and Reproduce can regenerate the first failing case.
package judge
