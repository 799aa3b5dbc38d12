package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommand_AllPass(t *testing.T) {
	out, err := execute(t, "test", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "✓ accept_all_task")
	assert.Contains(t, out.Stdout, "✓ ones_task")
	assert.Contains(t, out.Stdout, "2 passed, 0 failed, 2 total")
}

func TestTestCommand_JSON(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--format", "json")
	require.NoError(t, err)

	var result TestResult
	decodeData(t, out.Stdout, &result)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Passed)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "accept_all_task", result.Scenarios[0].Name)
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := execute(t, "test", scenariosDir, "--filter", "ones_*")
	require.NoError(t, err)
	assert.NotContains(t, out.Stdout, "accept_all_task")
	assert.Contains(t, out.Stdout, "1 passed, 0 failed, 1 total")

	_, err = execute(t, "test", scenariosDir, "--filter", "nothing_*")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_Update(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	out, err := execute(t, "test", scenariosDir, "--update", "--golden-dir", golden)
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "(golden updated)")

	written, err := os.ReadFile(filepath.Join(golden, "ones_task.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "golden", "ones_task.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	_, err = os.Stat(filepath.Join(golden, "accept_all_task.golden"))
	assert.NoError(t, err)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	golden := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(golden, "ones_task.golden"), []byte(`{"stale":true}`), 0o644))

	out, err := execute(t, "test", scenariosDir, "--golden-dir", golden)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.Stdout, "✗ ones_task")
	assert.Contains(t, out.Stdout, "output does not match golden file")
	assert.Contains(t, out.Stdout, "1 passed, 1 failed, 2 total")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	scenario := `name: wrong_expectation
description: "The ones automaton does not accept 0"
automaton:
  nodes:
    - {x: 0, y: 0, text: "q", isAcceptState: true}
  links:
    - {type: StartLink, node: 0, text: "1"}
checks:
  - word: "0"
    expect: Accept
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(scenario), 0o644))

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.Stdout, "✗ wrong_expectation")
	assert.Contains(t, out.Stdout, "expected Accept, got Reject")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, err := execute(t, "test", "testdata/nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
