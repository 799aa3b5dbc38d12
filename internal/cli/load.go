package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/task"
)

// readInput reads path, or standard input when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

// loadAutomaton reads and parses an editor JSON file. Failures are reported
// through f and come back as an ExitError.
func loadAutomaton(cmd *cobra.Command, f *OutputFormatter, path string) (*fsm.Automaton, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeReadFile,
			fmt.Sprintf("failed to read automaton: %v", err), map[string]string{"path": path})
	}
	a, err := fsm.Parse(data)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeParseFSM,
			fmt.Sprintf("failed to parse automaton: %v", err), map[string]string{"path": path})
	}
	f.VerboseLog("Loaded automaton %s: %d nodes, %d transitions", path, len(a.Nodes), len(a.Transitions))
	return a, nil
}

// loadTask loads the task named slug from a .cue file or directory.
func loadTask(f *OutputFormatter, path, slug string) (*task.Task, error) {
	result, errs := task.Load(path, task.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, outputLoadErrors(f, errs)
	}
	t, ok := task.Find(result.Tasks, slug)
	if !ok {
		return nil, f.Fail(ExitCommandError, ErrCodeTaskNotFound,
			fmt.Sprintf("task %q not found in %s", slug, path), map[string]string{"path": path})
	}
	f.VerboseLog("Loaded task %s from %s (%d files)", t.Slug, path, result.FileCount)
	return t, nil
}
