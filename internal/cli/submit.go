package cli

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/store"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	DBPath  string
	User    string
	Seed    int64
	Profile string
}

// SubmitResult is the JSON payload of the submit command.
type SubmitResult struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	SubmittedAt time.Time `json:"submitted_at"`
	*JudgeResult
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit <tasks> <slug> <automaton.json>",
		Short: "Grade an automaton and record the submission",
		Long: `Grade an automaton like judge does, then record the automaton, seed and
verdict in the submission database under the user's handle. The task is
stored too, so every submission is bound to the script it was graded with.

Without --seed a random master seed is drawn; it is recorded with the
submission so the verdict can be reproduced.

Exit codes:
  0 - Submission recorded with verdict Ok
  1 - Submission recorded with a failing verdict
  2 - Command error (database, task or file problem)

Examples:
  fsmjudge submit ./tasks ones ./answer.json --user alice
  fsmjudge submit ./tasks ones ./answer.json --user alice --db ./judge.db --seed 7`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.Seed = rand.Int64()
			}
			return runSubmit(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "fsmjudge.db", "path to the submission database")
	cmd.Flags().StringVar(&opts.User, "user", "", "user handle to record the submission under")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "master seed (random when unset)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "grading profile override")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runSubmit(opts *SubmitOptions, tasksPath, slug, automatonPath string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	if store.NormalizeUser(opts.User) == "" {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "--user must not be empty", nil)
	}

	t, err := loadTask(f, tasksPath, slug)
	if err != nil {
		return err
	}
	p, err := resolveProfile(t, opts.Profile)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, err.Error(), nil)
	}
	a, err := loadAutomaton(cmd, f, automatonPath)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), map[string]string{"db": opts.DBPath})
	}
	defer st.Close()

	if err := st.UpsertTask(ctx, *t); err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	f.VerboseLog("Grading %s for %s with profile %s, seed %d", t.Slug, opts.User, p.Name, opts.Seed)
	graded, err := grade(ctx, opts.RootOptions, t, a, opts.Seed, p)
	if err != nil {
		return WrapExitError(ExitCommandError, "grading failed", err)
	}

	sub, err := st.WriteSubmission(ctx, store.NewSubmission{
		TaskSlug:  t.Slug,
		User:      opts.User,
		Automaton: a,
		Seed:      opts.Seed,
		Profile:   p.Name,
		Verdict:   graded.Verdict,
	})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	opts.logger().Info("submission recorded", "id", sub.ID, "task", sub.TaskSlug,
		"user", sub.User, "verdict", string(sub.Verdict.Kind))

	result := SubmitResult{ID: sub.ID, User: sub.User, SubmittedAt: sub.SubmittedAt, JudgeResult: graded}
	if f.IsJSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		if err := outputVerdict(f, cmd.OutOrStdout(), graded); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  submission: %s\n", sub.ID)
	}

	if !graded.Verdict.Passed() {
		return NewExitError(ExitFailure, graded.Verdict.String())
	}
	return nil
}
