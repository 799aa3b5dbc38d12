// Package oracle runs task authors' Starlark scripts as ground-truth
// oracles for grading.
//
// A script defines two functions:
//
//	def gen_word(ok):     # a word check_word answers ok for
//	def check_word(word): # True if word is in the language
//
// The only capability a script receives is the predeclared rng value with
// rng.gen_range(lo, hi) (inclusive) and rng.choice(seq). Before each
// gen_word call the host reseeds rng from the case seed through
// ExpandSeed, so a seed always reproduces the same word. Scripts cannot
// load modules, loop with while, or recurse, and every call runs under an
// execution step budget.
package oracle
