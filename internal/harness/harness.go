package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/judge"
	"github.com/roach88/fsmjudge/internal/logging"
	"github.com/roach88/fsmjudge/internal/task"
)

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger routes judge and oracle logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithJudgeOptions appends options to every grading run.
func WithJudgeOptions(opts ...judge.Option) Option {
	return func(h *Harness) {
		h.judgeOpts = append(h.judgeOpts, opts...)
	}
}

// Harness is the scenario execution engine.
type Harness struct {
	logger    *slog.Logger
	judgeOpts []judge.Option
}

// Run executes a scenario and returns the result.
//
// Mismatches are reported in Result.Errors. A returned error means the
// scenario itself could not be executed (missing files, bad JSON).
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a context for the grading step.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	a, err := h.loadAutomaton(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	for i, c := range scenario.Checks {
		h.runCheck(i, a, c, result)
	}

	if scenario.Grading != nil {
		if err := h.runGrading(ctx, scenario, a, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (h *Harness) loadAutomaton(s *Scenario) (*fsm.Automaton, error) {
	data := s.Automaton.Inline
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(s.resolve(s.Automaton.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to read automaton: %w", err)
		}
	}
	a, err := fsm.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return a, nil
}

// runCheck evaluates one word with both evaluators.
func (h *Harness) runCheck(i int, a *fsm.Automaton, c Check, result *Result) {
	want, _ := parseExpectation(c.Expect)
	outcome := CheckOutcome{Word: c.Word, Expect: c.Expect}

	got, err := fsm.Evaluate(a, c.Word)
	if verr, ok := fsm.AsValidityError(err); ok {
		outcome.Result = string(verr.Code)
		result.Checks = append(result.Checks, outcome)
		if want.validity != verr.Code {
			result.AddError(fmt.Sprintf("checks[%d] %q: expected %s, automaton is invalid: %v", i, c.Word, c.Expect, verr))
		}
		return
	}
	if err != nil {
		outcome.Result = "error"
		result.Checks = append(result.Checks, outcome)
		result.AddError(fmt.Sprintf("checks[%d] %q: %v", i, c.Word, err))
		return
	}

	outcome.Result = got.String()
	result.Checks = append(result.Checks, outcome)

	if want.validity != "" {
		result.AddError(fmt.Sprintf("checks[%d] %q: expected %s, automaton is valid", i, c.Word, want.validity))
		return
	}
	if got != want.output {
		result.AddError(fmt.Sprintf("checks[%d] %q: expected %s, got %s", i, c.Word, want.output, got))
	}

	p, err := fsm.NewPlayer(a, c.Word)
	if err != nil {
		result.AddError(fmt.Sprintf("checks[%d] %q: player: %v", i, c.Word, err))
		return
	}
	played, err := p.Run()
	if err != nil {
		result.AddError(fmt.Sprintf("checks[%d] %q: player: %v", i, c.Word, err))
		return
	}
	if played != got {
		result.AddError(fmt.Sprintf("checks[%d] %q: player says %s, evaluator says %s", i, c.Word, played, got))
	}
}

func (h *Harness) runGrading(ctx context.Context, s *Scenario, a *fsm.Automaton, result *Result) error {
	g := s.Grading

	script, profile, err := h.gradingInputs(s)
	if err != nil {
		return err
	}

	opts := append([]judge.Option{judge.WithLogger(h.logger), judge.WithProfile(profile)}, h.judgeOpts...)
	v := judge.Grade(ctx, a, script, g.Seed, opts...)
	result.Verdict = &v

	if string(v.Kind) != g.Expect {
		result.AddError(fmt.Sprintf("grading: expected %s, got %s", g.Expect, v))
		return nil
	}
	if g.Successes != nil {
		if successes, _ := v.Score(); successes != *g.Successes {
			result.AddError(fmt.Sprintf("grading: expected %d successes, got %d", *g.Successes, successes))
		}
	}
	return nil
}

// gradingInputs resolves the oracle script and profile from either a
// script file or a CUE task.
func (h *Harness) gradingInputs(s *Scenario) (string, judge.Profile, error) {
	g := s.Grading
	profile := judge.DefaultProfile()

	var script string
	if g.Script != "" {
		data, err := os.ReadFile(s.resolve(g.Script))
		if err != nil {
			return "", profile, fmt.Errorf("failed to read script: %w", err)
		}
		script = string(data)
	} else {
		res, errs := task.Load(s.resolve(g.Task), task.LoadModeFailFast)
		if len(errs) > 0 {
			return "", profile, fmt.Errorf("failed to load task: %w", errs[0])
		}
		t, ok := task.Find(res.Tasks, g.Slug)
		if !ok {
			return "", profile, fmt.Errorf("task %q not found in %s", g.Slug, g.Task)
		}
		p, err := t.GradingProfile()
		if err != nil {
			return "", profile, err
		}
		script, profile = t.Script, p
	}

	if g.Profile != "" {
		p, err := judge.ProfileByName(g.Profile)
		if err != nil {
			return "", profile, err
		}
		profile = p
	}
	return script, profile, nil
}
