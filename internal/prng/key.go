package prng

import (
	"fmt"
	"math"
)

// Key is a Threefry-2x32 key. Keys are values: splitting or drawing from a key
// never mutates it, so the same key always yields the same numbers.
type Key [2]uint32

// NewKey builds a key from a 64-bit seed, high word first.
func NewKey(seed int64) Key {
	s := uint64(seed)
	return Key{uint32(s >> 32), uint32(s)}
}

// Split derives n independent child keys.
func (k Key) Split(n int) []Key {
	if n <= 0 {
		return nil
	}
	words := hashCounters(k[0], k[1], iota32(2*n))
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = Key{words[2*i], words[2*i+1]}
	}
	return keys
}

// Bits returns n pseudo-random 32-bit words.
func (k Key) Bits(n int) []uint32 {
	if n <= 0 {
		return nil
	}
	return hashCounters(k[0], k[1], iota32(n))
}

// Uniform returns n values in [0, 1). Each value carries 23 random mantissa
// bits, i.e. it is exactly representable as a float32.
func (k Key) Uniform(n int) []float64 {
	words := k.Bits(n)
	out := make([]float64, len(words))
	for i, w := range words {
		out[i] = bitsToUnit(w)
	}
	return out
}

func (k Key) String() string {
	return fmt.Sprintf("[%d %d]", k[0], k[1])
}

func bitsToUnit(w uint32) float64 {
	f := math.Float32frombits(w>>9 | 0x3f800000)
	return float64(f - 1)
}
