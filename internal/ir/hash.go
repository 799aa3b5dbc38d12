package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/fsmjudge/internal/fsm"
)

// Domain prefixes for content-addressed identities.
// The version suffix allows the hashed form to change later.
const (
	DomainAutomaton = "fsmjudge/automaton/v1"
	DomainScript    = "fsmjudge/script/v1"
	DomainVerdict   = "fsmjudge/verdict/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data) as hex.
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AutomatonValue returns the canonical form of a: accept flags and
// transitions in declaration order. Editor geometry and node captions are
// left out, so moving or renaming a node keeps the identity.
func AutomatonValue(a *fsm.Automaton) Object {
	accept := make(Array, len(a.Nodes))
	for i, n := range a.Nodes {
		accept[i] = Bool(n.Accept)
	}

	transitions := make(Array, len(a.Transitions))
	for i, t := range a.Transitions {
		obj := NewObject(
			O("kind", String(t.Kind().String())),
			O("to", Int(t.Target())),
			O("label", String(t.Label())),
		)
		if from, ok := t.Source(); ok {
			obj["from"] = Int(from)
		}
		transitions[i] = obj
	}

	return NewObject(
		O("format", String(FormatVersion)),
		O("accept", accept),
		O("transitions", transitions),
	)
}

// AutomatonHash computes the content-addressed identity of a.
func AutomatonHash(a *fsm.Automaton) (string, error) {
	canonical, err := MarshalCanonical(AutomatonValue(a))
	if err != nil {
		return "", fmt.Errorf("AutomatonHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAutomaton, canonical), nil
}

// ScriptHash computes the identity of an oracle script's exact source.
func ScriptHash(source string) string {
	return hashWithDomain(DomainScript, []byte(source))
}

// VerdictInputs is everything a grading run's outcome depends on.
type VerdictInputs struct {
	AutomatonHash string
	ScriptHash    string
	Seed          int64
	Trials        int
	// MaxSteps and MaxWordLen are the oracle limits; zero means the
	// oracle default.
	MaxSteps   uint64
	MaxWordLen int
}

// VerdictHash binds a verdict to the inputs that produced it. Two gradings
// with the same hash must agree.
func VerdictHash(in VerdictInputs) (string, error) {
	obj := NewObject(
		O("automaton", String(in.AutomatonHash)),
		O("script", String(in.ScriptHash)),
		O("seed", Int(in.Seed)),
		O("trials", Int(in.Trials)),
		O("max_steps", Int(in.MaxSteps)),
		O("max_word_len", Int(in.MaxWordLen)),
	)
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("VerdictHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainVerdict, canonical), nil
}

// MustAutomatonHash is like AutomatonHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustAutomatonHash(a *fsm.Automaton) string {
	h, err := AutomatonHash(a)
	if err != nil {
		panic(err)
	}
	return h
}
