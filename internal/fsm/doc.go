// Package fsm implements the automaton model and its two interpreters.
//
// An Automaton is an ordered list of nodes and an ordered list of
// transitions. A transition is either a Start (no source, matched only when
// simulation begins) or an Edge (source and target node). Labels are matched
// as literal prefixes of the remaining input, so one transition may consume
// zero, one or several characters.
//
// # Validity
//
// Validate runs three checks in a fixed order and stops at the first
// failure:
//
//  1. at least one Start transition exists (NoEntryLinks)
//  2. every referenced node index exists (DisjointedLink)
//  3. the empty-label Edge subgraph is acyclic (InfiniteLoop)
//
// Only a valid automaton may be simulated.
//
// # Interpreters
//
// Evaluate is the single-shot interpreter: it advances a set of cursors
// round by round until one of them sits on an accepting node with no input
// left, or until no cursor survives. Player runs the same simulation one
// half-round at a time so callers can render in-flight transitions
// separately from arrived nodes. Both interpreters produce the same
// Accept/Reject for every valid automaton and word.
//
// Both interpreters stop after DefaultRoundLimit rounds unless told
// otherwise. A valid automaton reaches that limit only on long input;
// RoundBound gives an upper bound for a given word.
package fsm
