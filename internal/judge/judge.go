package judge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/oracle"
)

const tracerName = "github.com/roach88/fsmjudge/internal/judge"

// Option configures a grading run.
type Option func(*config)

type config struct {
	profile  Profile
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	evalOpts []fsm.EvalOption
}

func newConfig(opts []Option) config {
	cfg := config{
		profile: DefaultProfile(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithProfile sets the trial count and script limits.
func WithProfile(p Profile) Option {
	return func(c *config) {
		c.profile = p
	}
}

// WithLogger sets the logger for pre-check and trial failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records trials and verdicts to m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithEvalOptions passes options to every automaton evaluation.
func WithEvalOptions(opts ...fsm.EvalOption) Option {
	return func(c *config) {
		c.evalOpts = append(c.evalOpts, opts...)
	}
}

// Case is one generated test and the automaton's answer to it.
type Case struct {
	Seed       int64      `json:"seed"`
	WantAccept bool       `json:"want_accept"`
	Word       string     `json:"word"`
	Expected   fsm.Output `json:"expected"`
	Actual     fsm.Output `json:"actual"`
}

// Passed reports whether the automaton agreed with the oracle.
func (c Case) Passed() bool {
	return c.Expected == c.Actual
}

// TestOnce generates the case for seed and evaluates a on it.
//
// a must already be valid; the evaluation skips validation. The round
// limit is raised to fit the generated word, so a valid automaton always
// reaches an answer. A WithRoundLimit in opts still takes precedence.
func TestOnce(s *oracle.Session, a *fsm.Automaton, seed int64, opts ...fsm.EvalOption) (Case, error) {
	want := oracle.WantAccept(seed)
	word, truth, err := s.GenerateCase(seed, want)
	if err != nil {
		return Case{}, err
	}
	limit := max(fsm.DefaultRoundLimit, fsm.RoundBound(a, word))
	opts = append([]fsm.EvalOption{fsm.WithRoundLimit(limit)}, opts...)
	actual, err := fsm.EvaluateUnchecked(a, word, opts...)
	if err != nil {
		return Case{}, fmt.Errorf("evaluate %q: %w", word, err)
	}
	return Case{
		Seed:       seed,
		WantAccept: want,
		Word:       word,
		Expected:   fsm.OutputOf(truth),
		Actual:     actual,
	}, nil
}

// RunTesting grades a against the oracle session.
//
// An invalid automaton yields InvalidFSM without running trials. Otherwise
// the profile's trial count is run with seeds drawn from masterSeed; every
// trial is counted, and the first mismatch is kept for reproduction. A
// script or evaluator failure during a trial yields TaskInternalError, as
// does cancellation of ctx between trials.
func RunTesting(ctx context.Context, a *fsm.Automaton, s *oracle.Session, masterSeed int64, opts ...Option) Verdict {
	cfg := newConfig(opts)

	ctx, span := cfg.tracer.Start(ctx, "judge.RunTesting",
		trace.WithAttributes(
			attribute.Int64("judge.seed", masterSeed),
			attribute.String("judge.profile", cfg.profile.Name),
			attribute.Int("judge.trials", cfg.profile.Trials),
		),
	)
	defer span.End()

	start := time.Now()
	v := runTrials(ctx, cfg, a, s, masterSeed)
	cfg.metrics.verdict(v, time.Since(start))

	successes, total := v.Score()
	span.SetAttributes(
		attribute.String("judge.verdict", string(v.Kind)),
		attribute.Int("judge.successes", successes),
		attribute.Int("judge.total", total),
	)
	if v.Kind == KindTaskInternalError {
		span.SetStatus(codes.Error, v.Message)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return v
}

func runTrials(ctx context.Context, cfg config, a *fsm.Automaton, s *oracle.Session, masterSeed int64) Verdict {
	if verr := fsm.Validate(a); verr != nil {
		cfg.logger.Info("pre-check failed", "reason", verr.Error())
		return InvalidFSM(verr)
	}

	evalOpts := append([]fsm.EvalOption{fsm.WithLogger(cfg.logger)}, cfg.evalOpts...)
	stream := oracle.NewSeedStream(masterSeed)

	var (
		successes int
		failed    bool
		firstSeed int64
		firstWant fsm.Output
	)
	for i := 0; i < cfg.profile.Trials; i++ {
		if err := ctx.Err(); err != nil {
			cfg.logger.Info("grading cancelled", "trial", i, "err", err)
			return TaskInternalError("grading cancelled")
		}

		seed := stream.Next()
		c, err := TestOnce(s, a, seed, evalOpts...)
		if err != nil {
			cfg.logger.Error("trial failed", "trial", i, "seed", seed, "err", err)
			return TaskInternalError(fmt.Sprintf("trial %d (seed %d): %v", i, seed, err))
		}

		cfg.metrics.trial(c.Passed())
		if c.Passed() {
			successes++
			continue
		}
		if !failed {
			failed = true
			firstSeed = seed
			firstWant = c.Expected
			cfg.logger.Debug("first mismatch", "trial", i, "seed", seed, "word", c.Word)
		}
	}

	if !failed {
		return OK(cfg.profile.Trials)
	}
	return WrongAnswer(cfg.profile.Trials, successes, firstSeed, firstWant)
}

// Grade compiles script, checks it and grades a. Script problems are the
// task author's and yield TaskInternalError.
func Grade(ctx context.Context, a *fsm.Automaton, script string, masterSeed int64, opts ...Option) Verdict {
	cfg := newConfig(opts)

	s, err := oracle.NewForAutomaton(a, script,
		oracle.WithLimits(cfg.profile.Limits()),
		oracle.WithLogger(cfg.logger),
	)
	if err != nil {
		cfg.logger.Error("oracle construction failed", "err", err)
		v := TaskInternalError(err.Error())
		cfg.metrics.verdict(v, 0)
		return v
	}
	return RunTesting(ctx, a, s, masterSeed, opts...)
}
