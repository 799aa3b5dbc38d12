package store

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/fsmjudge/internal/fsm"
	"github.com/roach88/fsmjudge/internal/judge"
)

// TaskRecord is a stored task with its script hash.
type TaskRecord struct {
	Slug       string
	Name       string
	Legend     string
	Script     string
	ScriptHash string
	Profile    string
	MaxSteps   uint64
	UpdatedAt  time.Time
}

// NewSubmission is what a caller supplies when recording a graded
// submission. ID, timestamp and hashes are filled in by the store.
type NewSubmission struct {
	TaskSlug  string
	User      string
	Automaton *fsm.Automaton
	Seed      int64
	Profile   string
	Verdict   judge.Verdict
}

// Submission is a stored, graded submission.
type Submission struct {
	ID            string
	TaskSlug      string
	User          string
	SubmittedAt   time.Time
	AutomatonHash string
	ScriptHash    string
	Automaton     *fsm.Automaton
	Seed          int64
	Profile       string
	Verdict       judge.Verdict
}

// Filter narrows ListSubmissions. Empty fields match everything.
type Filter struct {
	TaskSlug string
	User     string
	// Limit caps the number of rows; zero means no cap.
	Limit int
}

// NormalizeUser canonicalizes a user handle: surrounding space is trimmed
// and the text is put in NFC so visually equal handles share a history.
func NormalizeUser(user string) string {
	return norm.NFC.String(strings.TrimSpace(user))
}
