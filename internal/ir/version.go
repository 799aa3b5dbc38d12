package ir

// Version constants for hashed formats and the tool.
const (
	// FormatVersion is the version of the canonical automaton form.
	FormatVersion = "1"

	// EngineVersion is the fsmjudge version.
	EngineVersion = "0.1.0"
)
