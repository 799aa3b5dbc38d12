package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/fsmjudge/internal/ir"
	"github.com/roach88/fsmjudge/internal/task"
)

// UpsertTask inserts a task or replaces the stored definition of an
// existing slug. Submissions already graded against the old script keep
// the script hash they were graded with.
func (s *Store) UpsertTask(ctx context.Context, t task.Task) error {
	if t.Slug == "" {
		return fmt.Errorf("upsert task: empty slug")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks
		(slug, name, legend, script, script_hash, profile, max_steps, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			legend = excluded.legend,
			script = excluded.script,
			script_hash = excluded.script_hash,
			profile = excluded.profile,
			max_steps = excluded.max_steps,
			updated_at = excluded.updated_at
	`,
		t.Slug,
		t.Name,
		t.Legend,
		t.Script,
		ir.ScriptHash(t.Script),
		t.Profile,
		int64(t.MaxSteps),
		s.clock.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

// WriteSubmission records a graded submission and returns the stored row.
//
// The task must already be stored; the submission is bound to the task's
// current script hash. The user handle is normalized with NormalizeUser.
func (s *Store) WriteSubmission(ctx context.Context, sub NewSubmission) (*Submission, error) {
	user := NormalizeUser(sub.User)
	if user == "" {
		return nil, fmt.Errorf("write submission: empty user")
	}
	if sub.Automaton == nil {
		return nil, fmt.Errorf("write submission: nil automaton")
	}

	rec, err := s.GetTask(ctx, sub.TaskSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("write submission: task %q: %w", sub.TaskSlug, ErrNotFound)
		}
		return nil, fmt.Errorf("write submission: %w", err)
	}

	autoHash, err := ir.AutomatonHash(sub.Automaton)
	if err != nil {
		return nil, fmt.Errorf("write submission: %w", err)
	}
	solution, err := marshalSolution(sub.Automaton)
	if err != nil {
		return nil, fmt.Errorf("write submission: %w", err)
	}
	verdict, err := marshalVerdict(sub.Verdict)
	if err != nil {
		return nil, fmt.Errorf("write submission: %w", err)
	}
	successes, total := sub.Verdict.Score()

	out := &Submission{
		ID:            s.ids.Generate(),
		TaskSlug:      sub.TaskSlug,
		User:          user,
		SubmittedAt:   s.clock.Now().UTC(),
		AutomatonHash: autoHash,
		ScriptHash:    rec.ScriptHash,
		Automaton:     sub.Automaton,
		Seed:          sub.Seed,
		Profile:       strings.ToLower(sub.Profile),
		Verdict:       sub.Verdict,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions
		(id, task_slug, user_handle, submitted_at, automaton_hash, script_hash,
		 solution, seed, profile, verdict, verdict_kind, successes, total_tests)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		out.ID,
		out.TaskSlug,
		out.User,
		out.SubmittedAt.UnixNano(),
		out.AutomatonHash,
		out.ScriptHash,
		solution,
		out.Seed,
		out.Profile,
		verdict,
		string(out.Verdict.Kind),
		successes,
		total,
	)
	if err != nil {
		return nil, fmt.Errorf("write submission: %w", err)
	}

	return out, nil
}
