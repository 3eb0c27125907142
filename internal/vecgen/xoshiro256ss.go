package vecgen

import "math/bits"

// xoshiro256ss is the xoshiro256** pseudo-random generator (Blackman &
// Vigna, public domain reference algorithm), chosen because it exposes a
// jump()/long_jump() that produce statistically independent streams in
// O(1) — the property internal/vecgen.Generator.Fork depends on. No
// library in the retrieval pack ships xoshiro or a jumpable generator at
// all, and math/rand/v2's PCG/ChaCha8 sources don't expose an equivalent
// jump-ahead primitive, so this is hand-rolled from the published
// reference implementation.
type xoshiro256ss struct {
	s [4]uint64
}

func newXoshiro256ss(seed uint64) *xoshiro256ss {
	sm := newSplitMix64(seed)
	var x xoshiro256ss
	for i := range x.s {
		x.s[i] = sm.next()
	}
	return &x
}

func rotl(x uint64, k int) uint64 {
	return bits.RotateLeft64(x, k)
}

// next returns the generator's next 64-bit output and advances its state.
func (x *xoshiro256ss) next() uint64 {
	s := &x.s
	result := rotl(s[1]*5, 7) * 9

	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t

	s[3] = rotl(s[3], 45)

	return result
}

// jumpPolynomial is equivalent to 2^128 calls to next(), producing a
// stream that never overlaps the one it was derived from for up to 2^128
// outputs.
var jumpPolynomial = [4]uint64{
	0x180ec6d33cfd0aba, 0xd5a61266f0c9392c,
	0xa9582618e03fc9aa, 0x39abdc4529b1661c,
}

// longJumpPolynomial is equivalent to 2^192 calls to next().
var longJumpPolynomial = [4]uint64{
	0x76e15d3efefdcbbf, 0xc5004e441c522fb3,
	0x77710069854ee241, 0x39109bb02acbe635,
}

func (x *xoshiro256ss) applyPolynomial(poly [4]uint64) {
	var s0, s1, s2, s3 uint64
	for _, word := range poly {
		for b := 0; b < 64; b++ {
			if word&(uint64(1)<<uint(b)) != 0 {
				s0 ^= x.s[0]
				s1 ^= x.s[1]
				s2 ^= x.s[2]
				s3 ^= x.s[3]
			}
			x.next()
		}
	}
	x.s[0], x.s[1], x.s[2], x.s[3] = s0, s1, s2, s3
}

// jump advances the state as if 2^128 calls to next() had been made.
func (x *xoshiro256ss) jump() { x.applyPolynomial(jumpPolynomial) }

// longJump advances the state as if 2^192 calls to next() had been made.
func (x *xoshiro256ss) longJump() { x.applyPolynomial(longJumpPolynomial) }

// clone returns a deep copy of the generator's state.
func (x *xoshiro256ss) clone() *xoshiro256ss {
	c := *x
	return &c
}
