package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/ir"
	"github.com/roach88/fsmjudge/internal/judge"
	"github.com/roach88/fsmjudge/internal/testutil"
)

func submit(t *testing.T, s *Store, user string, a *fsm.Automaton, v judge.Verdict) *Submission {
	t.Helper()
	sub, err := s.WriteSubmission(context.Background(), NewSubmission{
		TaskSlug:  "ones",
		User:      user,
		Automaton: a,
		Seed:      42,
		Profile:   "interactive",
		Verdict:   v,
	})
	require.NoError(t, err)
	return sub
}

func TestUpsertTask(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	tk := onesTask()
	require.NoError(t, s.UpsertTask(ctx, tk))

	got, err := s.GetTask(ctx, "ones")
	require.NoError(t, err)
	assert.Equal(t, tk.Name, got.Name)
	assert.Equal(t, tk.Script, got.Script)
	assert.Equal(t, ir.ScriptHash(tk.Script), got.ScriptHash)
	assert.Equal(t, testutil.Epoch, got.UpdatedAt)

	tk.Name = "Ones only"
	tk.MaxSteps = 5000
	require.NoError(t, s.UpsertTask(ctx, tk))

	got, err = s.GetTask(ctx, "ones")
	require.NoError(t, err)
	assert.Equal(t, "Ones only", got.Name)
	assert.Equal(t, uint64(5000), got.MaxSteps)
	assert.True(t, got.UpdatedAt.After(testutil.Epoch))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestGetTask_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.GetTask(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasks_EmptyAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	for _, slug := range []string{"zeta", "alpha", "mid"} {
		tk := onesTask()
		tk.Slug = slug
		require.NoError(t, s.UpsertTask(ctx, tk))
	}
	tasks, err = s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "alpha", tasks[0].Slug)
	assert.Equal(t, "zeta", tasks[2].Slug)
}

func TestWriteSubmission_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedTask(t, s)

	a := testutil.AcceptAll()
	v := judge.WrongAnswer(100, 48, 9, fsm.Reject)
	sub := submit(t, s, "  alice ", a, v)

	assert.Equal(t, "sub-0001", sub.ID)
	assert.Equal(t, "alice", sub.User)
	assert.Equal(t, ir.MustAutomatonHash(a), sub.AutomatonHash)
	assert.Equal(t, ir.ScriptHash(testutil.OnesScript), sub.ScriptHash)

	got, err := s.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.SubmittedAt, got.SubmittedAt)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, "interactive", got.Profile)
	assert.True(t, v.Equal(got.Verdict))
	assert.Equal(t, a.Nodes, got.Automaton.Nodes)
	assert.Equal(t, ir.MustAutomatonHash(a), ir.MustAutomatonHash(got.Automaton))
}

func TestWriteSubmission_Errors(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	_, err := s.WriteSubmission(ctx, NewSubmission{TaskSlug: "ones", User: "bob", Automaton: testutil.Ones(), Verdict: judge.OK(100)})
	assert.ErrorIs(t, err, ErrNotFound, "task must be stored first")

	seedTask(t, s)
	_, err = s.WriteSubmission(ctx, NewSubmission{TaskSlug: "ones", User: "  ", Automaton: testutil.Ones(), Verdict: judge.OK(100)})
	assert.ErrorContains(t, err, "empty user")

	_, err = s.WriteSubmission(ctx, NewSubmission{TaskSlug: "ones", User: "bob", Verdict: judge.OK(100)})
	assert.ErrorContains(t, err, "nil automaton")
}

func TestWriteSubmission_InvalidVerdictKeepsError(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedTask(t, s)

	sub := submit(t, s, "carol", testutil.NoEntry(), judge.InvalidFSM(fsm.NewNoEntryLinks()))

	got, err := s.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	require.Equal(t, judge.KindInvalidFSM, got.Verdict.Kind)
	assert.Equal(t, fsm.CodeNoEntryLinks, got.Verdict.Invalid.Code)
}

func TestGetSubmission_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.GetSubmission(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSubmissions(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedTask(t, s)

	submit(t, s, "alice", testutil.AcceptAll(), judge.WrongAnswer(100, 50, 1, fsm.Reject))
	submit(t, s, "bob", testutil.Ones(), judge.OK(100))
	submit(t, s, "alice", testutil.Ones(), judge.OK(100))

	all, err := s.ListSubmissions(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"sub-0001", "sub-0002", "sub-0003"}, []string{all[0].ID, all[1].ID, all[2].ID})

	alice, err := s.ListSubmissions(ctx, Filter{TaskSlug: "ones", User: "alice"})
	require.NoError(t, err)
	require.Len(t, alice, 2)
	assert.Equal(t, judge.KindWrongAnswer, alice[0].Verdict.Kind)
	assert.Equal(t, judge.KindOK, alice[1].Verdict.Kind)

	limited, err := s.ListSubmissions(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := s.ListSubmissions(ctx, Filter{TaskSlug: "other"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestLatestSubmissions(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedTask(t, s)

	_, err := s.LatestSubmission(ctx, "ones", "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	first := submit(t, s, "alice", testutil.Ones(), judge.OK(100))
	last := submit(t, s, "alice", testutil.AcceptAll(), judge.WrongAnswer(100, 50, 1, fsm.Reject))

	got, err := s.LatestSubmission(ctx, "ones", "alice")
	require.NoError(t, err)
	assert.Equal(t, last.ID, got.ID)

	ok, err := s.LatestOKSubmission(ctx, "ones", "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, ok.ID)

	_, err = s.LatestOKSubmission(ctx, "ones", "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestNormalizeUser tests that composed and decomposed handles share one
// history.
func TestNormalizeUser(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	seedTask(t, s)

	submit(t, s, "jose\u0301", testutil.Ones(), judge.OK(100))

	got, err := s.LatestSubmission(ctx, "ones", "jos\u00e9")
	require.NoError(t, err)
	assert.Equal(t, "jos\u00e9", got.User)
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())
}
