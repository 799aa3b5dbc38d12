package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/judge"
	"github.com/roach88/fsmjudge/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DBPath string
	Task   string
	User   string
	Limit  int
}

// HistoryEntry is one recorded submission.
type HistoryEntry struct {
	ID            string        `json:"id"`
	Task          string        `json:"task"`
	User          string        `json:"user"`
	SubmittedAt   time.Time     `json:"submitted_at"`
	AutomatonHash string        `json:"automaton_hash"`
	Seed          int64         `json:"seed"`
	Profile       string        `json:"profile"`
	Verdict       judge.Verdict `json:"verdict"`
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Submissions []HistoryEntry `json:"submissions"`
	// Solved is set when both --task and --user are given.
	Solved *bool `json:"solved,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded submissions",
		Long: `List recorded submissions, oldest first. With both --task and --user,
also report whether the user has an Ok submission for the task.

Examples:
  fsmjudge history --db ./judge.db
  fsmjudge history --db ./judge.db --task ones --user alice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "fsmjudge.db", "path to the submission database")
	cmd.Flags().StringVar(&opts.Task, "task", "", "only submissions for this task slug")
	cmd.Flags().StringVar(&opts.User, "user", "", "only submissions by this user")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of submissions (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	if opts.Limit < 0 {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "--limit must not be negative", nil)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), map[string]string{"db": opts.DBPath})
	}
	defer st.Close()

	subs, err := st.ListSubmissions(ctx, store.Filter{TaskSlug: opts.Task, User: opts.User, Limit: opts.Limit})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := HistoryResult{Submissions: make([]HistoryEntry, 0, len(subs))}
	for _, s := range subs {
		result.Submissions = append(result.Submissions, HistoryEntry{
			ID:            s.ID,
			Task:          s.TaskSlug,
			User:          s.User,
			SubmittedAt:   s.SubmittedAt,
			AutomatonHash: s.AutomatonHash,
			Seed:          s.Seed,
			Profile:       s.Profile,
			Verdict:       s.Verdict,
		})
	}

	if opts.Task != "" && opts.User != "" {
		_, err := st.LatestOKSubmission(ctx, opts.Task, opts.User)
		switch {
		case err == nil:
			result.Solved = ptr(true)
		case errors.Is(err, store.ErrNotFound):
			result.Solved = ptr(false)
		default:
			return f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
	}

	if f.IsJSON() {
		return f.Success(result)
	}

	w := cmd.OutOrStdout()
	if len(result.Submissions) == 0 {
		fmt.Fprintln(w, "no submissions")
	}
	for _, e := range result.Submissions {
		fmt.Fprintf(w, "%s  %s  %-12s %-16s %s\n",
			e.SubmittedAt.Format(time.RFC3339), e.ID, e.Task, e.User, e.Verdict)
	}
	if result.Solved != nil {
		mark := "✗ not solved"
		if *result.Solved {
			mark = "✓ solved"
		}
		fmt.Fprintf(w, "%s: %s by %s\n", mark, opts.Task, store.NormalizeUser(opts.User))
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
