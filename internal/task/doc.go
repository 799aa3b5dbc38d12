// Package task loads grading tasks authored in CUE.
//
// A task directory holds one or more .cue files declaring tasks under the
// top-level "task" struct, keyed by slug:
//
//	task: ones: {
//		name:    "Only ones"
//		legend:  "Accept non-empty words made of 1."
//		script:  """
//			def check_word(word): ...
//			def gen_word(ok): ...
//			"""
//		profile: "interactive"
//	}
//
// Each task is unified with an embedded schema, compiled into a Task and
// validated; Validate also compiles the oracle script and runs its
// self-check so broken tasks are caught before a student submits.
package task
