package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/oracle"
	"github.com/roach88/fsmjudge/internal/task"
)

// OracleCheckResult is the oracle's answer for one word.
type OracleCheckResult struct {
	Word     string `json:"word"`
	Accepted bool   `json:"accepted"`
}

// OracleGenResult is one generated test case.
type OracleGenResult struct {
	Seed       int64  `json:"seed"`
	WantAccept bool   `json:"want_accept"`
	Word       string `json:"word"`
	Accepted   bool   `json:"accepted"`
}

// OracleGenOptions holds flags for the oracle gen command.
type OracleGenOptions struct {
	*RootOptions
	Want string // "auto" | "accept" | "reject"
}

// NewOracleCommand creates the oracle command group.
func NewOracleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Query a task's oracle script",
		Long: `Run a task's check_word and gen_word functions directly. Useful when
writing a task: every session runs the script's self-check first.`,
	}

	cmd.AddCommand(newOracleCheckCommand(rootOpts))
	cmd.AddCommand(newOracleGenCommand(rootOpts))

	return cmd
}

func newOracleCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <tasks> <slug> <word>...",
		Short: "Ask the oracle whether words are in the language",
		Long: `Ask the oracle whether words are in the task's language. <tasks> is a
.cue file or a directory of them.

Examples:
  fsmjudge oracle check ./tasks ones 111 101`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOracleCheck(rootOpts, args[0], args[1], args[2:], cmd)
		},
	}
}

func newOracleGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OracleGenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen <tasks> <slug> <seed>",
		Short: "Generate the test case for a seed",
		Long: `Generate the word a grading trial would use for seed, and the oracle's
answer for it. By default even seeds ask for an accepted word and odd
seeds for a rejected one, as in grading.

Examples:
  fsmjudge oracle gen ./tasks ones 42
  fsmjudge oracle gen ./tasks ones 42 --want reject`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOracleGen(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Want, "want", "auto", "kind of word to ask for (auto|accept|reject)")

	return cmd
}

// openSession loads a task and compiles its oracle.
func openSession(opts *RootOptions, f *OutputFormatter, path, slug string) (*task.Task, *oracle.Session, error) {
	t, err := loadTask(f, path, slug)
	if err != nil {
		return nil, nil, err
	}
	s, err := t.Session(opts.logger())
	if err != nil {
		return nil, nil, f.Fail(ExitFailure, ErrCodeOracle, err.Error(), map[string]string{"task": slug})
	}
	return t, s, nil
}

func runOracleCheck(opts *RootOptions, path, slug string, words []string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	_, s, err := openSession(opts, f, path, slug)
	if err != nil {
		return err
	}

	results := make([]OracleCheckResult, 0, len(words))
	for _, word := range words {
		ok, err := s.CheckWord(word)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeOracle, err.Error(), map[string]string{"word": word})
		}
		results = append(results, OracleCheckResult{Word: word, Accepted: ok})
	}

	if f.IsJSON() {
		return f.Success(results)
	}
	w := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(w, "%q\t%t\n", r.Word, r.Accepted)
	}
	return nil
}

func runOracleGen(opts *OracleGenOptions, path, slug, seedArg string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	seed, err := strconv.ParseInt(seedArg, 10, 64)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("invalid seed %q", seedArg), nil)
	}

	var want bool
	switch opts.Want {
	case "auto":
		want = oracle.WantAccept(seed)
	case "accept":
		want = true
	case "reject":
		want = false
	default:
		return f.Fail(ExitCommandError, ErrCodeBadArgument,
			fmt.Sprintf("invalid --want %q: must be auto, accept or reject", opts.Want), nil)
	}

	_, s, err := openSession(opts.RootOptions, f, path, slug)
	if err != nil {
		return err
	}

	word, accepted, err := s.GenerateCase(seed, want)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeOracle, err.Error(), map[string]int64{"seed": seed})
	}
	result := OracleGenResult{Seed: seed, WantAccept: want, Word: word, Accepted: accepted}

	if f.IsJSON() {
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%q\t%t\n", result.Word, result.Accepted)
	return nil
}
