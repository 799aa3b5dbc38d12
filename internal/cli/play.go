package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/fsm"
)

// PlayResult is the JSON payload of the play command.
type PlayResult struct {
	Word    string      `json:"word"`
	Outcome string      `json:"outcome"`
	Frames  []fsm.Frame `json:"frames"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <automaton.json> <word>",
		Short: "Step through an automaton run",
		Long: `Run an automaton on one word half a round at a time and print every
frame: the cursors sitting on nodes and the cursors crossing transitions,
with the input each one has left.

Examples:
  fsmjudge play ./answer.json 0110
  fsmjudge play ./answer.json 0110 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.RoundLimit, "round-limit", fsm.DefaultRoundLimit, "maximum simulation rounds")

	return cmd
}

func runPlay(opts *EvalOptions, path, word string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.RoundLimit <= 0 {
		return f.Fail(ExitCommandError, ErrCodeBadArgument, "--round-limit must be positive", nil)
	}

	a, err := loadAutomaton(cmd, f, path)
	if err != nil {
		return err
	}

	p, err := fsm.NewPlayer(a, word, fsm.WithRoundLimit(opts.RoundLimit), fsm.WithLogger(opts.logger()))
	if err != nil {
		if verr, ok := fsm.AsValidityError(err); ok {
			return f.Fail(ExitFailure, ErrCodeInvalidFSM, verr.Error(), verr)
		}
		return f.Fail(ExitFailure, ErrCodeEvaluate, err.Error(), nil)
	}

	frames, err := p.Frames()
	result := PlayResult{Word: word, Outcome: p.Phase().String(), Frames: frames}
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeEvaluate, err.Error(), result)
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	w := cmd.OutOrStdout()
	for _, fr := range frames {
		writeFrame(w, fr)
	}
	out, _ := p.Outcome()
	fmt.Fprintf(w, "%q: %s after %d steps\n", word, out, p.Steps())
	return nil
}

// writeFrame prints one frame as a single line. Node cursors read
// n<index>:"<rest>", transition cursors t<index>:"<before>"->"<after>".
func writeFrame(w io.Writer, fr fsm.Frame) {
	parts := make([]string, 0, len(fr.Nodes)+len(fr.Transitions))
	for _, c := range fr.Nodes {
		parts = append(parts, fmt.Sprintf("n%d:%q", c.Node, c.Remaining))
	}
	for _, c := range fr.Transitions {
		parts = append(parts, fmt.Sprintf("t%d:%q->%q", c.Transition, c.Before, c.After))
	}
	fmt.Fprintf(w, "%3d %-9s %s\n", fr.Step, fr.Phase, strings.Join(parts, " "))
}
