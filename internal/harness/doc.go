// Package harness runs conformance scenarios against the evaluator and
// the judge.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: ones_language
//	description: "Non-empty words of 1"
//	automaton: ../automata/ones.json   # path, or an inline editor object
//	checks:
//	  - word: "111"
//	    expect: Accept
//	  - word: ""
//	    expect: Reject
//	grading:
//	  script: ../scripts/ones.star     # or task: file.cue plus slug
//	  seed: 42
//	  profile: interactive
//	  expect: Ok
//
// A check's expect is Accept, Reject, or a validity code (NoEntryLinks,
// DisjointedLink, InfiniteLoop) when the automaton is meant to be
// rejected before simulation. Every word check runs both the batch
// evaluator and a Player and fails if they disagree.
//
// Paths are relative to the scenario file. Grading is deterministic, so
// RunWithGolden can snapshot the outcome of every check and the verdict.
package harness
