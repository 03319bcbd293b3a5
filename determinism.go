package ecs

import (
	"hash/maphash"
	"math/rand/v2"
)

// DeterministicRNG wraps a seeded PCG generator so prefab batch spawns (spec
// §4.6) and any other system that wants reproducible randomness produce
// byte-identical sequences given the same seed across runs (spec §8
// invariant 9). math/rand/v2's PCG is deterministic given a fixed seed,
// which is all §4.6/§9 ask for; see DESIGN.md for why no third-party PRNG
// is wired instead.
type DeterministicRNG struct {
	r *rand.Rand
}

// NewDeterministicRNG returns an RNG seeded from a single uint64, expanded
// into the two seed words rand.NewPCG requires.
func NewDeterministicRNG(seed uint64) *DeterministicRNG {
	return &DeterministicRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Uint64 returns the next pseudo-random uint64.
func (d *DeterministicRNG) Uint64() uint64 { return d.r.Uint64() }

// Float64 returns a pseudo-random float64 in [0,1).
func (d *DeterministicRNG) Float64() float64 { return d.r.Float64() }

// IntN returns a pseudo-random int in [0,n).
func (d *DeterministicRNG) IntN(n int) int { return d.r.IntN(n) }

// Guid128 returns a 128-bit random id suitable for spec §6.3's
// probabilistically-unique persisted identity; uniqueness is not guaranteed,
// matching the spec's explicit "no global index" contract.
func (d *DeterministicRNG) Guid128() [2]uint64 {
	return [2]uint64{d.r.Uint64(), d.r.Uint64()}
}

// FrameHasher accumulates a per-frame state hash (spec §2 "Determinism
// helpers: reproducible RNG; per-frame state hash") so two replays of the
// same input sequence can be compared bit-for-bit (spec §8 invariant 11).
type FrameHasher struct {
	h maphash.Hash
}

// NewFrameHasher returns a hasher using seed, so hashers built from the same
// Seed value hash identical content to identical values (maphash.Hash
// otherwise seeds itself randomly). A maphash.Seed comes only from
// maphash.MakeSeed and is random, so this holds within one process only.
func NewFrameHasher(seed maphash.Seed) *FrameHasher {
	fh := &FrameHasher{}
	fh.h.SetSeed(seed)
	return fh
}

// WriteUint64 folds v into the running hash.
func (fh *FrameHasher) WriteUint64(v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	fh.h.Write(buf[:])
}

// Sum64 returns the accumulated hash and resets the hasher for the next
// frame.
func (fh *FrameHasher) Sum64() uint64 {
	sum := fh.h.Sum64()
	fh.h.Reset()
	return sum
}
