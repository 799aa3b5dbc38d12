package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	onesAutomaton      = filepath.Join("testdata", "automata", "ones.json")
	acceptAllAutomaton = filepath.Join("testdata", "automata", "accept_all.json")
	noEntryAutomaton   = filepath.Join("testdata", "automata", "no_entry.json")
	tasksDir           = filepath.Join("testdata", "tasks")
	brokenTasksDir     = filepath.Join("testdata", "broken")
	scenariosDir       = filepath.Join("testdata", "scenarios")
)

// cmdOutput captures what one CLI invocation wrote.
type cmdOutput struct {
	Stdout string
	Stderr string
}

// execute runs the root command with args, as the binary would.
func execute(t *testing.T, args ...string) (cmdOutput, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (cmdOutput, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return cmdOutput{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// jsonResponse is CLIResponse with the payload left raw for typed decoding.
type jsonResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decodeResponse(t *testing.T, out string) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	resp := decodeResponse(t, out)
	require.Equal(t, "ok", resp.Status, "output: %s", out)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}
