package task

import (
	"fmt"
	"log/slog"

	"github.com/roach88/fsmjudge/internal/judge"
	"github.com/roach88/fsmjudge/internal/oracle"
)

// Task is a compiled grading task.
type Task struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Legend string `json:"legend"`
	Script string `json:"script"`
	// Profile is a judge profile name; empty means the default profile.
	Profile    string `json:"profile,omitempty"`
	MaxSteps   uint64 `json:"max_steps,omitempty"`
	MaxWordLen int    `json:"max_word_len,omitempty"`
}

// GradingProfile resolves the task's profile. A task-level step budget
// overrides the profile's.
func (t *Task) GradingProfile() (judge.Profile, error) {
	p := judge.DefaultProfile()
	if t.Profile != "" {
		var err error
		if p, err = judge.ProfileByName(t.Profile); err != nil {
			return judge.Profile{}, err
		}
	}
	if t.MaxSteps > 0 {
		p.StepBudget = t.MaxSteps
	}
	p.MaxWordLen = t.MaxWordLen
	return p, nil
}

// Limits returns the oracle limits for the task's script.
func (t *Task) Limits() oracle.Limits {
	l := oracle.Limits{MaxSteps: t.MaxSteps, MaxWordLen: t.MaxWordLen}
	if l.MaxSteps == 0 {
		if p, err := t.GradingProfile(); err == nil {
			l.MaxSteps = p.StepBudget
		}
	}
	return l
}

// Session compiles the task's oracle script and runs its self-check.
func (t *Task) Session(logger *slog.Logger) (*oracle.Session, error) {
	s, err := oracle.New(t.Script, oracle.WithLimits(t.Limits()), oracle.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", t.Slug, err)
	}
	return s, nil
}

// Find returns the task with the given slug.
func Find(tasks []Task, slug string) (*Task, bool) {
	for i := range tasks {
		if tasks[i].Slug == slug {
			return &tasks[i], true
		}
	}
	return nil, false
}
