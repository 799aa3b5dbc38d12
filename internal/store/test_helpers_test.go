package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/fsmjudge/internal/task"
	"github.com/roach88/fsmjudge/internal/testutil"
)

// createTestStore creates a new file-backed store with deterministic IDs
// and timestamps.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDs("sub")),
		WithClock(testutil.NewSteppingClock(0)))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// onesTask is a task whose script is testutil.OnesScript.
func onesTask() task.Task {
	return task.Task{
		Slug:    "ones",
		Name:    "Only ones",
		Legend:  "Non-empty words of 1.",
		Script:  testutil.OnesScript,
		Profile: "interactive",
	}
}

// seedTask stores onesTask and fails the test on error.
func seedTask(t *testing.T, s *Store) {
	t.Helper()
	if err := s.UpsertTask(context.Background(), onesTask()); err != nil {
		t.Fatalf("UpsertTask() failed: %v", err)
	}
}
