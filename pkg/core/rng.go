package core

import (
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

// Stream separates independent families of draws that share a coordinate and
// step.
type Stream uint64

const (
	// StreamDraw feeds probability gates.
	StreamDraw Stream = iota + 1
	// StreamNeighbor feeds partner selection.
	StreamNeighbor
	// StreamSeeding feeds initial-condition sampling.
	StreamSeeding
)

// Source is a stateless, seedable generator addressed by (coordinate, step).
// Every method is a pure function of the seed and its arguments, so values can
// be computed from any goroutine in any order.
type Source struct {
	seed uint64
}

// NewSource returns a Source for the provided seed.
func NewSource(seed int64) Source {
	return Source{seed: uint64(seed)}
}

// Seed reports the seed the source was built with.
func (s Source) Seed() int64 { return int64(s.seed) }

// Uint64 hashes (seed, stream, x, y, z, step) into a uniformly distributed
// 64-bit value.
func (s Source) Uint64(stream Stream, x, y, z, step int) uint64 {
	var buf [48]byte
	binary.LittleEndian.PutUint64(buf[0:], s.seed)
	binary.LittleEndian.PutUint64(buf[8:], uint64(stream))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(x)))
	binary.LittleEndian.PutUint64(buf[24:], uint64(int64(y)))
	binary.LittleEndian.PutUint64(buf[32:], uint64(int64(z)))
	binary.LittleEndian.PutUint64(buf[40:], uint64(int64(step)))
	return xxhash.Sum64(buf[:])
}

// Float64 returns a value in [0, 1) for the given stream.
func (s Source) Float64(stream Stream, x, y, z, step int) float64 {
	return float64(s.Uint64(stream, x, y, z, step)>>11) * 0x1p-53
}

// IntN returns a value in [0, n) for the given stream. n must be positive.
func (s Source) IntN(stream Stream, n, x, y, z, step int) int {
	hi, _ := bits.Mul64(s.Uint64(stream, x, y, z, step), uint64(n))
	return int(hi)
}

// Draw returns the probability draw for a cell at a step.
func (s Source) Draw(x, y, z, step int) float64 {
	return s.Float64(StreamDraw, x, y, z, step)
}

// NeighborIndex picks one of the 26 Moore offsets for a cell at a step.
func (s Source) NeighborIndex(x, y, z, step int) int {
	return s.IntN(StreamNeighbor, 26, x, y, z, step)
}
