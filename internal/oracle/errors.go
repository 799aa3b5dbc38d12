package oracle

import (
	"errors"
	"fmt"
)

// Stage names the point in a session's life where a script failed.
type Stage string

const (
	StageCompile   Stage = "compile"
	StageSelfCheck Stage = "self-check"
	StageCall      Stage = "call"
)

var (
	// ErrSelfCheck marks a generator that disagrees with its own oracle.
	ErrSelfCheck = errors.New("oracle self-check failed")

	// ErrMissingEntry marks a script that does not define an entry point.
	ErrMissingEntry = errors.New("script does not define a required function")

	// ErrBadReturn marks an entry point that returned the wrong type.
	ErrBadReturn = errors.New("script function returned an unexpected value")

	// ErrWordTooLong marks a generated word over the length limit.
	ErrWordTooLong = errors.New("generated word exceeds length limit")

	// ErrStepLimit marks a call that ran out of execution steps.
	ErrStepLimit = errors.New("script exceeded its step budget")
)

// ScriptError is a failure attributed to the task author's script.
type ScriptError struct {
	Stage Stage
	Entry string // function being called, empty for compile failures
	Err   error
}

func (e *ScriptError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("script %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("script %s: %s: %v", e.Stage, e.Entry, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// IsScriptError reports whether err is, or wraps, a ScriptError.
func IsScriptError(err error) bool {
	var se *ScriptError
	return errors.As(err, &se)
}
