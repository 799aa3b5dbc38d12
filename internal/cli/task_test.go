package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracleCheckCommand(t *testing.T) {
	out, err := execute(t, "oracle", "check", tasksDir, "ones", "111", "10", "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.Stdout), "\n")
	assert.Equal(t, []string{"\"111\"\ttrue", "\"10\"\tfalse", "\"\"\tfalse"}, lines)
}

func TestOracleGenCommand(t *testing.T) {
	out, err := execute(t, "oracle", "gen", tasksDir, "ones", "42", "--format", "json")
	require.NoError(t, err)

	var even OracleGenResult
	decodeData(t, out.Stdout, &even)
	assert.Equal(t, int64(42), even.Seed)
	assert.True(t, even.WantAccept)
	assert.True(t, even.Accepted)
	assert.NotEmpty(t, even.Word)

	out, err = execute(t, "oracle", "gen", tasksDir, "ones", "42", "--want", "reject", "--format", "json")
	require.NoError(t, err)

	var rejected OracleGenResult
	decodeData(t, out.Stdout, &rejected)
	assert.False(t, rejected.WantAccept)
	assert.False(t, rejected.Accepted)
}

func TestOracleGenCommand_Deterministic(t *testing.T) {
	first, err := execute(t, "oracle", "gen", tasksDir, "ones", "7")
	require.NoError(t, err)
	second, err := execute(t, "oracle", "gen", tasksDir, "ones", "7")
	require.NoError(t, err)
	assert.Equal(t, first.Stdout, second.Stdout)
}

func TestOracleCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exitCode int
		errCode  string
	}{
		{"bad seed", []string{"oracle", "gen", tasksDir, "ones", "abc"}, ExitCommandError, ErrCodeBadArgument},
		{"bad want", []string{"oracle", "gen", tasksDir, "ones", "1", "--want", "maybe"}, ExitCommandError, ErrCodeBadArgument},
		{"unknown task", []string{"oracle", "check", tasksDir, "twos", "1"}, ExitCommandError, ErrCodeTaskNotFound},
		{"missing path", []string{"oracle", "check", "testdata/nowhere", "ones", "1"}, ExitCommandError, "E005"},
		{"broken script", []string{"oracle", "check", brokenTasksDir, "broken", "1"}, ExitFailure, ErrCodeOracle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--format", "json")
			out, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.exitCode, GetExitCode(err))

			resp := decodeResponse(t, out.Stdout)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.errCode, resp.Error.Code)
		})
	}
}

func TestTasksCommand(t *testing.T) {
	out, err := execute(t, "tasks", tasksDir)
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "ones")
	assert.Contains(t, out.Stdout, "interactive")
	assert.Contains(t, out.Stdout, "Only ones")
	assert.Contains(t, out.Stdout, "✓ 1 task(s) valid (1 files)")
}

func TestTasksCommand_JSON(t *testing.T) {
	out, err := execute(t, "tasks", tasksDir, "--format", "json")
	require.NoError(t, err)

	var result TasksResult
	decodeData(t, out.Stdout, &result)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "ones", result.Tasks[0].Slug)
	assert.Equal(t, 100, result.Tasks[0].Trials)
	assert.Len(t, result.Tasks[0].ScriptHash, 64)
	assert.Empty(t, result.Errors)
}

func TestTasksCommand_SelfCheckFails(t *testing.T) {
	out, err := execute(t, "tasks", brokenTasksDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.Stdout, "✗ [E204] task broken")

	out, err = execute(t, "tasks", brokenTasksDir, "--format", "json")
	require.Error(t, err)
	resp := decodeResponse(t, out.Stdout)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E204", resp.Error.Code)
}

func TestTasksCommand_NotFound(t *testing.T) {
	out, err := execute(t, "tasks", "testdata/nowhere")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out.Stdout, "E005")
}
