package oracle

import (
	"fmt"
	"io"
	"log/slog"

	"go.starlark.net/starlark"

	"github.com/roach88/fsmjudge/internal/fsm"
)

const (
	entryGenerate = "gen_word"
	entryCheck    = "check_word"

	scriptFilename = "task.star"
)

// Limits bound what a single script call may consume.
type Limits struct {
	// MaxSteps is the Starlark execution step budget per call.
	MaxSteps uint64
	// MaxWordLen is the longest word gen_word may return, in bytes.
	MaxWordLen int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps:   1_000_000,
		MaxWordLen: 1_000,
	}
}

// Option configures a Session.
type Option func(*config)

type config struct {
	limits Limits
	logger *slog.Logger
}

// WithLimits overrides DefaultLimits. Zero fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(c *config) {
		if l.MaxSteps > 0 {
			c.limits.MaxSteps = l.MaxSteps
		}
		if l.MaxWordLen > 0 {
			c.limits.MaxWordLen = l.MaxWordLen
		}
	}
}

// WithLogger routes script print output and call failures to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Session is a compiled oracle script bound to its own random source.
//
// A Session is single-owner: GenerateCase reseeds the shared rng value.
// Use Clone to get an independent session for another goroutine.
type Session struct {
	source    string
	program   *starlark.Program
	automaton *fsm.Automaton

	rng      *randomSource
	generate starlark.Callable
	check    starlark.Callable
	limits   Limits
	logger   *slog.Logger
}

// New compiles script and runs the self-check: with the all-zero key,
// gen_word(True) must produce a word check_word accepts, and gen_word(False)
// one it rejects. Any failure is returned as a *ScriptError.
func New(script string, opts ...Option) (*Session, error) {
	cfg := config{
		limits: DefaultLimits(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	_, prog, err := starlark.SourceProgram(scriptFilename, script, func(name string) bool {
		return name == "rng"
	})
	if err != nil {
		return nil, &ScriptError{Stage: StageCompile, Err: err}
	}

	s := &Session{
		source:  script,
		program: prog,
		limits:  cfg.limits,
		logger:  cfg.logger,
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	if err := s.selfCheck(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewForAutomaton builds a session for grading a. The automaton is carried
// for the judge; the script never sees it.
func NewForAutomaton(a *fsm.Automaton, script string, opts ...Option) (*Session, error) {
	s, err := New(script, opts...)
	if err != nil {
		return nil, err
	}
	s.automaton = a
	return s, nil
}

// init executes the top level of the program against a fresh rng and binds
// the entry points.
func (s *Session) init() error {
	s.rng = newRandomSource()

	thread := s.newThread("init")
	globals, err := s.program.Init(thread, starlark.StringDict{"rng": s.rng})
	if err != nil {
		return &ScriptError{Stage: StageCompile, Err: s.describe(thread, err)}
	}
	globals.Freeze()

	gen, err := entryPoint(globals, entryGenerate)
	if err != nil {
		return err
	}
	check, err := entryPoint(globals, entryCheck)
	if err != nil {
		return err
	}
	s.generate, s.check = gen, check
	return nil
}

func entryPoint(globals starlark.StringDict, name string) (starlark.Callable, error) {
	v, ok := globals[name]
	if !ok {
		return nil, &ScriptError{Stage: StageCompile, Entry: name, Err: ErrMissingEntry}
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, &ScriptError{
			Stage: StageCompile,
			Entry: name,
			Err:   fmt.Errorf("%w: %s is a %s, not a function", ErrMissingEntry, name, v.Type()),
		}
	}
	return fn, nil
}

func (s *Session) selfCheck() error {
	for _, want := range []bool{true, false} {
		s.rng.reseed([32]byte{})
		word, err := s.callGenerate(want)
		if err != nil {
			return withStage(err, StageSelfCheck)
		}
		got, err := s.callCheck(word)
		if err != nil {
			return withStage(err, StageSelfCheck)
		}
		if got != want {
			return &ScriptError{
				Stage: StageSelfCheck,
				Entry: entryGenerate,
				Err: fmt.Errorf("%w: gen_word(%s) returned %q, but check_word says %s",
					ErrSelfCheck, pyBool(want), word, pyBool(got)),
			}
		}
	}
	return nil
}

// Oracle reports whether word belongs to the task's language.
func (s *Session) Oracle(word string) (bool, error) {
	return s.callCheck(word)
}

// CheckWord is Oracle under the name the authoring tools use.
func (s *Session) CheckWord(word string) (bool, error) {
	return s.Oracle(word)
}

// GenerateCase reseeds the rng from seed, asks gen_word for a word of the
// requested kind and returns it with check_word's verdict on it. The same
// arguments always produce the same result.
func (s *Session) GenerateCase(seed int64, wantAccept bool) (string, bool, error) {
	s.rng.reseed(ExpandSeed(seed))
	word, err := s.callGenerate(wantAccept)
	if err != nil {
		return "", false, err
	}
	truth, err := s.callCheck(word)
	if err != nil {
		return "", false, err
	}
	return word, truth, nil
}

// Clone returns an independent session running the same compiled program.
func (s *Session) Clone() (*Session, error) {
	c := &Session{
		source:    s.source,
		program:   s.program,
		automaton: s.automaton,
		limits:    s.limits,
		logger:    s.logger,
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

// Source returns the script text the session was compiled from.
func (s *Session) Source() string { return s.source }

// Automaton returns the automaton passed to NewForAutomaton, if any.
func (s *Session) Automaton() *fsm.Automaton { return s.automaton }

// Limits returns the limits in force.
func (s *Session) Limits() Limits { return s.limits }

func (s *Session) callGenerate(wantAccept bool) (string, error) {
	v, err := s.call(entryGenerate, s.generate, starlark.Bool(wantAccept))
	if err != nil {
		return "", err
	}
	word, ok := starlark.AsString(v)
	if !ok {
		return "", &ScriptError{
			Stage: StageCall,
			Entry: entryGenerate,
			Err:   fmt.Errorf("%w: want string, got %s", ErrBadReturn, v.Type()),
		}
	}
	if len(word) > s.limits.MaxWordLen {
		return "", &ScriptError{
			Stage: StageCall,
			Entry: entryGenerate,
			Err:   fmt.Errorf("%w: %d > %d bytes", ErrWordTooLong, len(word), s.limits.MaxWordLen),
		}
	}
	return word, nil
}

func (s *Session) callCheck(word string) (bool, error) {
	v, err := s.call(entryCheck, s.check, starlark.String(word))
	if err != nil {
		return false, err
	}
	b, ok := v.(starlark.Bool)
	if !ok {
		return false, &ScriptError{
			Stage: StageCall,
			Entry: entryCheck,
			Err:   fmt.Errorf("%w: want bool, got %s", ErrBadReturn, v.Type()),
		}
	}
	return bool(b), nil
}

func (s *Session) call(name string, fn starlark.Callable, arg starlark.Value) (starlark.Value, error) {
	thread := s.newThread(name)
	v, err := starlark.Call(thread, fn, starlark.Tuple{arg}, nil)
	if err != nil {
		err = s.describe(thread, err)
		s.logger.Error("script call failed", "entry", name, "err", err)
		return nil, &ScriptError{Stage: StageCall, Entry: name, Err: err}
	}
	return v, nil
}

func (s *Session) newThread(name string) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			s.logger.Debug("script print", "entry", name, "output", msg)
		},
	}
	thread.SetMaxExecutionSteps(s.limits.MaxSteps)
	return thread
}

// describe tags step-budget exhaustion and keeps the script backtrace.
func (s *Session) describe(thread *starlark.Thread, err error) error {
	if thread.ExecutionSteps() >= s.limits.MaxSteps {
		return fmt.Errorf("%w (%d steps): %v", ErrStepLimit, s.limits.MaxSteps, err)
	}
	if ee, ok := err.(*starlark.EvalError); ok {
		return fmt.Errorf("%s", ee.Backtrace())
	}
	return err
}

func withStage(err error, stage Stage) error {
	if se, ok := err.(*ScriptError); ok {
		return &ScriptError{Stage: stage, Entry: se.Entry, Err: se.Err}
	}
	return &ScriptError{Stage: stage, Err: err}
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
