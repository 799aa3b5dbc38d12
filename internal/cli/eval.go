package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/fsm"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	RoundLimit int
}

// EvalResult is the answer for one word.
type EvalResult struct {
	Word   string     `json:"word"`
	Output fsm.Output `json:"output"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <automaton.json> <word>...",
		Short: "Run an automaton on words",
		Long: `Run an editor automaton on one or more words and print Accept or
Reject for each. Pass "" for the empty word.

Exit codes:
  0 - Every word was evaluated
  1 - Automaton is invalid or an evaluation hit the round limit
  2 - Command error

Examples:
  fsmjudge eval ./answer.json 0110 111 ""
  fsmjudge eval ./answer.json 0110 --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.RoundLimit, "round-limit", fsm.DefaultRoundLimit, "maximum simulation rounds per word")

	return cmd
}

func runEval(opts *EvalOptions, path string, words []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.RoundLimit <= 0 {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "--round-limit must be positive", nil)
	}

	a, err := loadAutomaton(cmd, f, path)
	if err != nil {
		return err
	}
	if verr := fsm.Validate(a); verr != nil {
		return f.Fail(ExitFailure, ErrCodeInvalidFSM, verr.Error(), verr)
	}

	evalOpts := []fsm.EvalOption{
		fsm.WithRoundLimit(opts.RoundLimit),
		fsm.WithLogger(opts.logger()),
	}
	results := make([]EvalResult, 0, len(words))
	for _, word := range words {
		out, err := fsm.EvaluateUnchecked(a, word, evalOpts...)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeEvaluate,
				fmt.Sprintf("word %q: %v", word, err), map[string]string{"word": word})
		}
		results = append(results, EvalResult{Word: word, Output: out})
	}

	if f.IsJSON() {
		return f.Success(results)
	}
	w := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(w, "%q\t%s\n", r.Word, r.Output)
	}
	return nil
}
