package oracle

import (
	"encoding/binary"
	"math/rand/v2"
)

// seedLabel is the fixed 24-byte prefix of every expanded seed.
const seedLabel = "Expand into 32-byte key:"

// ExpandSeed derives a 32-byte ChaCha8 key from a seed: the fixed label
// followed by the big-endian bytes of seed. The derivation does not depend
// on the platform, so the same seed yields the same words everywhere.
func ExpandSeed(seed int64) [32]byte {
	var key [32]byte
	copy(key[:], seedLabel)
	binary.BigEndian.PutUint64(key[24:], uint64(seed))
	return key
}

// ContractSeed recovers the seed from a key produced by ExpandSeed.
func ContractSeed(key [32]byte) int64 {
	return int64(binary.BigEndian.Uint64(key[24:]))
}

// NewSource returns a deterministic generator keyed by the expanded seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewChaCha8(ExpandSeed(seed)))
}

// SeedStream yields the per-trial seeds derived from a master seed.
type SeedStream struct {
	r *rand.Rand
}

// NewSeedStream starts the per-trial seed sequence for master.
func NewSeedStream(master int64) *SeedStream {
	return &SeedStream{r: NewSource(master)}
}

// Next returns the next trial seed.
func (s *SeedStream) Next() int64 {
	return int64(s.r.Uint64())
}

// WantAccept is the rule that picks which kind of word a trial asks for:
// even seeds ask for a word the oracle accepts.
func WantAccept(seed int64) bool {
	return seed%2 == 0
}
