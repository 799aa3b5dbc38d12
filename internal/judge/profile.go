package judge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/fsmjudge/internal/oracle"
)

// Profile fixes how much work a grading run does.
type Profile struct {
	Name string
	// Trials is the number of generated test cases.
	Trials int
	// StepBudget is the script step budget per oracle call.
	StepBudget uint64
	// MaxWordLen caps generated words. Zero keeps the oracle default.
	MaxWordLen int
}

// Limits returns the oracle limits the profile grades under.
func (p Profile) Limits() oracle.Limits {
	return oracle.Limits{MaxSteps: p.StepBudget, MaxWordLen: p.MaxWordLen}
}

// Built-in profiles. Interactive gives fast feedback while solving;
// Authoritative is used for the recorded verdict.
var (
	Interactive   = Profile{Name: "interactive", Trials: 100, StepBudget: 1_000_000}
	Authoritative = Profile{Name: "authoritative", Trials: 1000, StepBudget: 1_000_000}
)

var profiles = map[string]Profile{
	Interactive.Name:   Interactive,
	Authoritative.Name: Authoritative,
}

// DefaultProfile is used when no profile is configured.
func DefaultProfile() Profile {
	return Interactive
}

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (valid: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames returns the built-in profile names in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
