package oracle

import (
	"fmt"
	"math"
	"math/rand/v2"

	"go.starlark.net/starlark"
)

// randomSource is the rng value scripts see. It is the only capability
// a script gets; the host reseeds it before every generator call.
type randomSource struct {
	r *rand.Rand
}

var _ starlark.HasAttrs = (*randomSource)(nil)

func newRandomSource() *randomSource {
	return &randomSource{r: rand.New(rand.NewChaCha8([32]byte{}))}
}

// reseed resets the source to the stream keyed by key.
func (s *randomSource) reseed(key [32]byte) {
	s.r = rand.New(rand.NewChaCha8(key))
}

func (s *randomSource) String() string        { return "<rng>" }
func (s *randomSource) Type() string          { return "rng" }
func (s *randomSource) Freeze()               {}
func (s *randomSource) Truth() starlark.Bool  { return starlark.True }
func (s *randomSource) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: rng") }

func (s *randomSource) Attr(name string) (starlark.Value, error) {
	switch name {
	case "gen_range":
		return starlark.NewBuiltin("rng.gen_range", s.genRange), nil
	case "choice":
		return starlark.NewBuiltin("rng.choice", s.choice), nil
	default:
		return nil, nil
	}
}

func (s *randomSource) AttrNames() []string {
	return []string{"choice", "gen_range"}
}

// genRange returns an integer in [lo, hi], both ends inclusive.
func (s *randomSource) genRange(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var lo, hi int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &lo, &hi); err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, fmt.Errorf("%s: empty range [%d, %d]", b.Name(), lo, hi)
	}
	width := uint64(hi) - uint64(lo)
	if width == math.MaxUint64 {
		return starlark.MakeInt64(int64(s.r.Uint64())), nil
	}
	return starlark.MakeInt64(int64(lo) + int64(s.r.Uint64N(width+1))), nil
}

// choice returns a uniformly chosen element of a non-empty sequence.
func (s *randomSource) choice(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var seq starlark.Indexable
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &seq); err != nil {
		return nil, err
	}
	n := seq.Len()
	if n == 0 {
		return nil, fmt.Errorf("%s: empty sequence", b.Name())
	}
	return seq.Index(s.r.IntN(n)), nil
}
