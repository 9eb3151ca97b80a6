package prng

import "math/bits"

const threefryParity = 0x1BD11BDA

var threefryRotations = [2][4]int{
	{13, 15, 26, 6},
	{17, 29, 16, 24},
}

// Threefry2x32 applies the 20-round Threefry-2x32 block function to one
// counter pair under the given key.
func Threefry2x32(k0, k1, x0, x1 uint32) (uint32, uint32) {
	ks := [3]uint32{k0, k1, k0 ^ k1 ^ threefryParity}

	x0 += ks[0]
	x1 += ks[1]

	for i := 0; i < 5; i++ {
		for _, r := range threefryRotations[i%2] {
			x0 += x1
			x1 = bits.RotateLeft32(x1, r)
			x1 ^= x0
		}
		x0 += ks[(i+1)%3]
		x1 += ks[(i+2)%3] + uint32(i+1)
	}

	return x0, x1
}

// hashCounters runs the block function over a flat counter array. The array
// is split into two halves that are fed as the x0 and x1 lanes; an odd length
// is padded with a zero and the pad is dropped from the output.
func hashCounters(k0, k1 uint32, counts []uint32) []uint32 {
	n := len(counts)
	padded := counts
	if n%2 != 0 {
		padded = make([]uint32, n+1)
		copy(padded, counts)
	}

	half := len(padded) / 2
	out := make([]uint32, len(padded))
	for i := 0; i < half; i++ {
		out[i], out[half+i] = Threefry2x32(k0, k1, padded[i], padded[half+i])
	}

	return out[:n]
}

func iota32(n int) []uint32 {
	c := make([]uint32, n)
	for i := range c {
		c[i] = uint32(i)
	}
	return c
}
