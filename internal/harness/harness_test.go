package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fsmjudge/internal/judge"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

// TestScenarios_Golden tests every deterministic scenario against its
// golden snapshot.
func TestScenarios_Golden(t *testing.T) {
	for _, name := range []string{
		"ones_language",
		"no_entry",
		"epsilon_start",
		"one_then_zero",
		"epsilon_loop",
		"multi_char_labels",
		"broken_script",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadTestScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_TaskGrading(t *testing.T) {
	result, err := Run(loadTestScenario(t, "accept_all_task"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.NotNil(t, result.Verdict)
	assert.Equal(t, judge.KindWrongAnswer, result.Verdict.Kind)
	successes, total := result.Verdict.Score()
	assert.Equal(t, 100, total)
	assert.Less(t, successes, total)
}

func TestRun_ReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectations
description: "Every expectation here is wrong"
automaton:
  nodes: [{x: 0, y: 0, text: "A", isAcceptState: true}]
  links: [{type: StartLink, node: 0, text: "a", deltaX: 0, deltaY: 0}]
checks:
  - word: "a"
    expect: Reject
  - word: "a"
    expect: InfiniteLoop
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "expected Reject, got Accept")
	assert.Contains(t, result.Errors[1], "automaton is valid")
	assert.Equal(t, "Accept", result.Checks[0].Result)
}

func TestRun_InvalidAutomatonMismatch(t *testing.T) {
	s := loadTestScenario(t, "no_entry")
	s.Checks[0].Expect = "Accept"
	s.Grading.Expect = "Ok"

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "automaton is invalid")
	assert.Contains(t, result.Errors[1], "grading: expected Ok")
}

func TestRun_SuccessCountMismatch(t *testing.T) {
	s := loadTestScenario(t, "ones_language")
	n := 99
	s.Grading.Successes = &n

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected 99 successes, got 100")
}

func TestRun_MissingFiles(t *testing.T) {
	s := loadTestScenario(t, "ones_language")
	s.Automaton.Path = "missing.json"
	_, err := Run(s)
	assert.ErrorContains(t, err, "failed to read automaton")

	s = loadTestScenario(t, "ones_language")
	s.Grading.Script = "missing.star"
	_, err = Run(s)
	assert.ErrorContains(t, err, "failed to read script")

	s = loadTestScenario(t, "accept_all_task")
	s.Grading.Slug = "twos"
	_, err = Run(s)
	assert.ErrorContains(t, err, `task "twos" not found`)
}

func TestRun_ProfileOverride(t *testing.T) {
	s := loadTestScenario(t, "ones_language")
	s.Grading.Profile = "authoritative"
	n := 1000
	s.Grading.Successes = &n

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, judge.OK(1000), *result.Verdict)
}

func TestRun_JudgeOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := judge.NewMetrics(reg)

	_, err := RunContext(context.Background(), loadTestScenario(t, "ones_language"),
		WithJudgeOptions(judge.WithMetrics(m)))
	require.NoError(t, err)

	count, err := promtest.GatherAndCount(reg, "fsmjudge_verdicts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVerdictValue(t *testing.T) {
	tests := []struct {
		name     string
		verdict  judge.Verdict
		expected string
	}{
		{"ok", judge.OK(3), `{"Ok":3}`},
		{"internal", judge.TaskInternalError("<boom>"), `{"TaskInternalError":"<boom>"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResult()
			r.Verdict = &tt.verdict
			snap, err := Snapshot("x", r)
			require.NoError(t, err)
			assert.Equal(t, `{"checks":[],"scenario":"x","verdict":`+tt.expected+`}`, string(snap))
		})
	}

	_, err := VerdictValue(judge.Verdict{Kind: judge.KindInvalidFSM})
	assert.Error(t, err)
}
