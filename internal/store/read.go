package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/fsmjudge/internal/judge"
)

// GetTask returns the stored task with the given slug, or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, slug string) (*TaskRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT slug, name, legend, script, script_hash, profile, max_steps, updated_at
		FROM tasks
		WHERE slug = ?
	`, slug)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %q: %w", slug, err)
	}
	return t, nil
}

// ListTasks returns every stored task ordered by slug.
// Returns an empty slice (not nil) when there are none.
func (s *Store) ListTasks(ctx context.Context) ([]TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, legend, script, script_hash, profile, max_steps, updated_at
		FROM tasks
		ORDER BY slug COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []TaskRecord{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetSubmission returns the submission with the given ID, or ErrNotFound.
func (s *Store) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, submissionColumns+`
		WHERE id = ?
	`, id)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission %q: %w", id, err)
	}
	return sub, nil
}

// ListSubmissions returns submissions matching f, oldest first.
// Returns an empty slice (not nil) when none match.
func (s *Store) ListSubmissions(ctx context.Context, f Filter) ([]Submission, error) {
	var (
		where []string
		args  []any
	)
	if f.TaskSlug != "" {
		where = append(where, "task_slug = ?")
		args = append(args, f.TaskSlug)
	}
	if f.User != "" {
		where = append(where, "user_handle = ?")
		args = append(args, NormalizeUser(f.User))
	}

	query := submissionColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at ASC, id COLLATE BINARY ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return s.querySubmissions(ctx, query, args...)
}

// LatestSubmission returns the user's most recent submission for a task,
// or ErrNotFound.
func (s *Store) LatestSubmission(ctx context.Context, taskSlug, user string) (*Submission, error) {
	return s.latest(ctx, taskSlug, user, "")
}

// LatestOKSubmission returns the user's most recent accepted submission
// for a task, or ErrNotFound. A task counts as solved once this exists.
func (s *Store) LatestOKSubmission(ctx context.Context, taskSlug, user string) (*Submission, error) {
	return s.latest(ctx, taskSlug, user, judge.KindOK)
}

func (s *Store) latest(ctx context.Context, taskSlug, user string, kind judge.Kind) (*Submission, error) {
	query := submissionColumns + `
		WHERE task_slug = ? AND user_handle = ?`
	args := []any{taskSlug, NormalizeUser(user)}
	if kind != "" {
		query += " AND verdict_kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY submitted_at DESC, id COLLATE BINARY DESC LIMIT 1"

	subs, err := s.querySubmissions(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}
	return &subs[0], nil
}

const submissionColumns = `
	SELECT id, task_slug, user_handle, submitted_at, automaton_hash, script_hash,
	       solution, seed, profile, verdict
	FROM submissions`

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	subs := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*TaskRecord, error) {
	var (
		t        TaskRecord
		maxSteps int64
		updated  int64
	)
	if err := row.Scan(&t.Slug, &t.Name, &t.Legend, &t.Script, &t.ScriptHash, &t.Profile, &maxSteps, &updated); err != nil {
		return nil, err
	}
	t.MaxSteps = uint64(maxSteps)
	t.UpdatedAt = time.Unix(0, updated).UTC()
	return &t, nil
}

func scanSubmission(row scanner) (*Submission, error) {
	var (
		sub       Submission
		submitted int64
		solution  string
		verdict   string
	)
	err := row.Scan(
		&sub.ID,
		&sub.TaskSlug,
		&sub.User,
		&submitted,
		&sub.AutomatonHash,
		&sub.ScriptHash,
		&solution,
		&sub.Seed,
		&sub.Profile,
		&verdict,
	)
	if err != nil {
		return nil, err
	}

	sub.SubmittedAt = time.Unix(0, submitted).UTC()
	if sub.Automaton, err = unmarshalSolution(solution); err != nil {
		return nil, fmt.Errorf("submission %s: %w", sub.ID, err)
	}
	if sub.Verdict, err = unmarshalVerdict(verdict); err != nil {
		return nil, fmt.Errorf("submission %s: %w", sub.ID, err)
	}
	return &sub, nil
}
