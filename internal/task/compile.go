package task

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
)

//go:embed schema.cue
var schemaSource string

// CompileError reports a task that does not fit the schema.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// schemaFor compiles the embedded #Task definition in the context that
// built v. Values from different contexts cannot be unified.
func schemaFor(v cue.Value) (cue.Value, error) {
	schema := v.Context().CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling task schema: %w", err)
	}
	return schema.LookupPath(cue.ParsePath("#Task")), nil
}

// CompileTask converts the CUE value of one task into a Task. The slug is
// taken from the value's label.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`task: ones: { ... }`)
//	t, err := CompileTask(v.LookupPath(cue.ParsePath("task.ones")))
func CompileTask(v cue.Value) (*Task, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &Task{}
	if sels := v.Path().Selectors(); len(sels) > 0 {
		t.Slug = sels[len(sels)-1].Unquoted()
	}

	def, err := schemaFor(v)
	if err != nil {
		return nil, err
	}
	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	if t.Name, err = stringField(v, "name"); err != nil {
		return nil, err
	}
	if t.Legend, err = stringField(v, "legend"); err != nil {
		return nil, err
	}
	// Scripts are kept byte-exact: labels compare literally.
	if t.Script, err = v.LookupPath(cue.ParsePath("script")).String(); err != nil {
		return nil, formatCUEError(err)
	}

	if pv := v.LookupPath(cue.ParsePath("profile")); pv.Exists() {
		if t.Profile, err = pv.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if sv := v.LookupPath(cue.ParsePath("max_steps")); sv.Exists() {
		if t.MaxSteps, err = sv.Uint64(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if wv := v.LookupPath(cue.ParsePath("max_word_len")); wv.Exists() {
		n, err := wv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t.MaxWordLen = int(n)
	}

	return t, nil
}

// stringField reads a display string and normalizes it to NFC so that
// visually equal names compare equal.
func stringField(v cue.Value, field string) (string, error) {
	s, err := v.LookupPath(cue.ParsePath(field)).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
