package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/ir"
	"github.com/roach88/fsmjudge/internal/judge"
	"github.com/roach88/fsmjudge/internal/oracle"
	"github.com/roach88/fsmjudge/internal/task"
)

// JudgeOptions holds flags for the judge command.
type JudgeOptions struct {
	*RootOptions
	Seed      int64
	Profile   string // overrides the task's profile when set
	Metrics   bool   // print grading metrics to stderr
	Reproduce bool   // replay the first failing case of a WrongAnswer
}

// JudgeResult is the JSON payload of the judge command.
type JudgeResult struct {
	Task          string              `json:"task"`
	Seed          int64               `json:"seed"`
	Profile       string              `json:"profile"`
	AutomatonHash string              `json:"automaton_hash"`
	ScriptHash    string              `json:"script_hash"`
	VerdictHash   string              `json:"verdict_hash"`
	Verdict       judge.Verdict       `json:"verdict"`
	Reproduction  *judge.Reproduction `json:"reproduction,omitempty"`
}

// NewJudgeCommand creates the judge command.
func NewJudgeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JudgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "judge <tasks> <slug> <automaton.json>",
		Short: "Grade an automaton against a task",
		Long: `Grade an automaton against a task's oracle. The task's profile decides
how many trials run; --profile overrides it. The verdict depends only on
the automaton, the task script and --seed.

Exit codes:
  0 - Verdict is Ok
  1 - Verdict is WrongAnswer, InvalidFSM or TaskInternalError
  2 - Command error (unreadable file, unknown task or profile)

Examples:
  fsmjudge judge ./tasks ones ./answer.json
  fsmjudge judge ./tasks ones ./answer.json --seed 7 --profile authoritative
  fsmjudge judge ./tasks ones ./answer.json --reproduce --format json`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJudge(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "master seed for the trials")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "grading profile ("+strings.Join(judge.ProfileNames(), "|")+")")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print grading metrics to stderr")
	cmd.Flags().BoolVar(&opts.Reproduce, "reproduce", false, "replay the first failing case")

	return cmd
}

// resolveProfile picks the override when given, else the task's profile.
func resolveProfile(t *task.Task, override string) (judge.Profile, error) {
	p, err := t.GradingProfile()
	if err != nil {
		return judge.Profile{}, err
	}
	if override == "" {
		return p, nil
	}
	o, err := judge.ProfileByName(override)
	if err != nil {
		return judge.Profile{}, err
	}
	if t.MaxSteps > 0 {
		o.StepBudget = t.MaxSteps
	}
	o.MaxWordLen = t.MaxWordLen
	return o, nil
}

// grade runs the judge and fills in the identities of its inputs.
func grade(ctx context.Context, opts *RootOptions, t *task.Task, a *fsm.Automaton, seed int64, p judge.Profile, jopts ...judge.Option) (*JudgeResult, error) {
	automatonHash, err := ir.AutomatonHash(a)
	if err != nil {
		return nil, fmt.Errorf("hash automaton: %w", err)
	}
	scriptHash := ir.ScriptHash(t.Script)

	jopts = append([]judge.Option{judge.WithLogger(opts.logger()), judge.WithProfile(p)}, jopts...)
	v := judge.Grade(ctx, a, t.Script, seed, jopts...)

	verdictHash, err := ir.VerdictHash(ir.VerdictInputs{
		AutomatonHash: automatonHash,
		ScriptHash:    scriptHash,
		Seed:          seed,
		Trials:        p.Trials,
		MaxSteps:      p.StepBudget,
		MaxWordLen:    p.MaxWordLen,
	})
	if err != nil {
		return nil, fmt.Errorf("hash verdict: %w", err)
	}

	return &JudgeResult{
		Task:          t.Slug,
		Seed:          seed,
		Profile:       p.Name,
		AutomatonHash: automatonHash,
		ScriptHash:    scriptHash,
		VerdictHash:   verdictHash,
		Verdict:       v,
	}, nil
}

func runJudge(opts *JudgeOptions, tasksPath, slug, automatonPath string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

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

	var (
		reg   *prometheus.Registry
		jopts []judge.Option
	)
	if opts.Metrics {
		reg = prometheus.NewRegistry()
		jopts = append(jopts, judge.WithMetrics(judge.NewMetrics(reg)))
	}

	f.VerboseLog("Grading %s with profile %s (%d trials), seed %d", t.Slug, p.Name, p.Trials, opts.Seed)
	result, err := grade(cmd.Context(), opts.RootOptions, t, a, opts.Seed, p, jopts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "grading failed", err)
	}

	if opts.Reproduce && result.Verdict.Kind == judge.KindWrongAnswer {
		s, err := oracle.NewForAutomaton(a, t.Script,
			oracle.WithLimits(p.Limits()),
			oracle.WithLogger(opts.logger()))
		if err == nil {
			result.Reproduction, err = judge.Reproduce(s, a, result.Verdict)
		}
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeOracle, fmt.Sprintf("reproduce: %v", err), result)
		}
	}

	if reg != nil {
		if err := writeMetrics(f.GetErrWriter(), reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to gather metrics", err)
		}
	}

	if err := outputVerdict(f, cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if !result.Verdict.Passed() {
		return NewExitError(ExitFailure, result.Verdict.String())
	}
	return nil
}

// outputVerdict prints a grading result in the configured format.
func outputVerdict(f *OutputFormatter, w io.Writer, r *JudgeResult) error {
	if f.IsJSON() {
		return f.Success(r)
	}

	mark := "✓"
	if !r.Verdict.Passed() {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s: %s\n", mark, r.Task, r.Verdict)
	fmt.Fprintf(w, "  profile: %s, seed: %d\n", r.Profile, r.Seed)
	fmt.Fprintf(w, "  verdict hash: %s\n", r.VerdictHash)

	if rep := r.Reproduction; rep != nil {
		fmt.Fprintf(w, "  first failing word: %q (expected %s, got %s)\n",
			rep.Case.Word, rep.Case.Expected, rep.Case.Actual)
		for _, fr := range rep.Frames {
			fmt.Fprint(w, "  ")
			writeFrame(w, fr)
		}
	}
	return nil
}

// writeMetrics prints every gathered sample as name{labels} value.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}
