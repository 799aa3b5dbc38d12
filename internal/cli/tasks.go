package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/ir"
	"github.com/roach88/fsmjudge/internal/task"
)

// TaskSummary describes one loaded task.
type TaskSummary struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Profile    string `json:"profile"`
	Trials     int    `json:"trials"`
	ScriptHash string `json:"script_hash"`
}

// TasksResult is the JSON payload of the tasks command.
type TasksResult struct {
	Tasks  []TaskSummary          `json:"tasks"`
	Errors []task.ValidationError `json:"errors,omitempty"`
}

// NewTasksCommand creates the tasks command.
func NewTasksCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks <path>",
		Short: "Load, check and list tasks",
		Long: `Load every task under path (a .cue file or a directory), check each
against the task schema, compile its oracle script and run the script's
self-check.

Exit codes:
  0 - All tasks are usable
  1 - Validation errors found
  2 - Command error (path not found, CUE errors, etc.)

Examples:
  fsmjudge tasks ./tasks
  fsmjudge tasks ./tasks/ones.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runTasks(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	result, errs := task.Load(path, task.LoadModeCollectAll)
	if len(errs) > 0 {
		return outputLoadErrors(f, errs)
	}

	out := TasksResult{Tasks: make([]TaskSummary, 0, len(result.Tasks))}
	for i := range result.Tasks {
		t := &result.Tasks[i]
		summary := TaskSummary{Slug: t.Slug, Name: t.Name, ScriptHash: ir.ScriptHash(t.Script)}
		if p, err := t.GradingProfile(); err == nil {
			summary.Profile, summary.Trials = p.Name, p.Trials
		}
		out.Tasks = append(out.Tasks, summary)
	}
	out.Errors = task.Validate(result.Tasks, opts.logger())

	if f.IsJSON() {
		if len(out.Errors) > 0 {
			return f.Fail(ExitFailure, out.Errors[0].Code, "task validation failed", out)
		}
		return f.Success(out)
	}

	w := cmd.OutOrStdout()
	for _, s := range out.Tasks {
		fmt.Fprintf(w, "%-20s %-14s %5d trials  %s\n", s.Slug, s.Profile, s.Trials, s.Name)
	}
	if len(out.Errors) > 0 {
		for _, e := range out.Errors {
			fmt.Fprintf(w, "✗ %s\n", e.Error())
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d task validation error(s)", len(out.Errors)))
	}
	fmt.Fprintf(w, "✓ %d task(s) valid (%d files)\n", len(out.Tasks), result.FileCount)
	return nil
}

// outputLoadErrors reports task load errors. The first error's code is the
// reported code.
func outputLoadErrors(f *OutputFormatter, errs []error) error {
	code := task.ErrCodeGeneric
	var loadErr *task.LoadError
	if errors.As(errs[0], &loadErr) {
		code = loadErr.Code
	}

	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	if f.IsJSON() {
		return f.Fail(ExitCommandError, code, "failed to load tasks", messages)
	}
	for _, m := range messages {
		fmt.Fprintf(f.Writer, "✗ %s\n", m)
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("failed to load tasks: %d error(s)", len(errs)))
}
