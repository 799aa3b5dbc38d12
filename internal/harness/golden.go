package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/ir"
	"github.com/roach88/fsmjudge/internal/judge"
)

// Snapshot returns the canonical JSON form of a scenario result: every
// check outcome plus the verdict, if any.
func Snapshot(name string, r *Result) ([]byte, error) {
	checks := make(ir.Array, len(r.Checks))
	for i, c := range r.Checks {
		checks[i] = ir.NewObject(
			ir.O("word", ir.String(c.Word)),
			ir.O("expect", ir.String(c.Expect)),
			ir.O("result", ir.String(c.Result)),
		)
	}

	obj := ir.NewObject(
		ir.O("scenario", ir.String(name)),
		ir.O("checks", checks),
	)
	if r.Verdict != nil {
		v, err := VerdictValue(*r.Verdict)
		if err != nil {
			return nil, err
		}
		obj["verdict"] = v
	}
	return ir.MarshalCanonical(obj)
}

// VerdictValue converts a verdict to the canonical value mirroring its
// tagged JSON form.
func VerdictValue(v judge.Verdict) (ir.Value, error) {
	var body ir.Value
	switch v.Kind {
	case judge.KindOK:
		body = ir.Int(v.TotalTests)
	case judge.KindWrongAnswer:
		body = ir.NewObject(
			ir.O("total_tests", ir.Int(v.TotalTests)),
			ir.O("successes", ir.Int(v.Successes)),
			ir.O("first_failure_seed", ir.Int(v.FirstFailureSeed)),
			ir.O("first_failure_expected_result", ir.String(v.FirstFailureExpected.String())),
		)
	case judge.KindInvalidFSM:
		if v.Invalid == nil {
			return nil, fmt.Errorf("InvalidFSM verdict without a validity error")
		}
		body = validityValue(v.Invalid)
	case judge.KindTaskInternalError:
		body = ir.String(v.Message)
	default:
		return nil, fmt.Errorf("unknown verdict kind %q", string(v.Kind))
	}
	return ir.NewObject(ir.O(string(v.Kind), body)), nil
}

func validityValue(e *fsm.ValidityError) ir.Value {
	if e.Code == fsm.CodeDisjointedLink {
		return ir.NewObject(ir.O(string(e.Code), ir.Array{ir.Int(e.Transition), ir.Int(e.Node)}))
	}
	return ir.String(e.Code)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}

	snapshot, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return result, nil
}
