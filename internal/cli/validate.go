package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/ir"
)

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	Valid       bool               `json:"valid"`
	Hash        string             `json:"hash"`
	Nodes       int                `json:"nodes"`
	Transitions int                `json:"transitions"`
	Error       *fsm.ValidityError `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <automaton.json>",
		Short: "Check an automaton for structural errors",
		Long: `Check an editor automaton for the three structural errors: no entry
links, links to missing nodes, and empty-label loops.

Use "-" to read the automaton from standard input.

Exit codes:
  0 - Automaton is valid
  1 - Automaton is invalid
  2 - Command error (unreadable file, malformed JSON)

Examples:
  fsmjudge validate ./answer.json
  fsmjudge validate ./answer.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	a, err := loadAutomaton(cmd, f, path)
	if err != nil {
		return err
	}

	hash, err := ir.AutomatonHash(a)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash automaton", err)
	}

	result := ValidateResult{
		Valid:       true,
		Hash:        hash,
		Nodes:       len(a.Nodes),
		Transitions: len(a.Transitions),
	}
	if verr := fsm.Validate(a); verr != nil {
		opts.logger().Debug("automaton invalid", "path", path, "code", verr.Code)
		result.Valid = false
		result.Error = verr
		return f.Fail(ExitFailure, ErrCodeInvalidFSM, verr.Error(), result)
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ automaton is valid (%d nodes, %d transitions)\n", result.Nodes, result.Transitions)
	fmt.Fprintf(w, "  hash: %s\n", hash)
	return nil
}
