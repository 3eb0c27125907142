// Package vecgen generates pseudo-random float32 vectors for benchmarks,
// synthetic fixtures, and tests, via a seedable xoshiro256** generator
// that supports forking independent, non-overlapping streams.
package vecgen

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Generator produces pseudo-random uint64/float32 values from a
// xoshiro256** stream.
type Generator struct {
	rng *xoshiro256ss
}

// FromSeed returns a Generator deterministically seeded from seed; the
// same seed always produces the same stream of outputs.
func FromSeed(seed uint64) *Generator {
	return &Generator{rng: newXoshiro256ss(seed)}
}

// FromEntropy returns a Generator seeded from the operating system's
// entropy source, for callers that don't need reproducibility.
func FromEntropy() (*Generator, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}
	return FromSeed(binary.LittleEndian.Uint64(buf[:])), nil
}

// Next returns the generator's next raw 64-bit output.
func (g *Generator) Next() uint64 { return g.rng.next() }

// NextFloat32 returns a uniformly distributed float32 in [0, 1).
func (g *Generator) NextFloat32() float32 {
	// Keep the top 24 bits, matching float32's mantissa precision, so
	// every multiple of 2^-24 in [0, 1) is equally likely.
	return float32(g.rng.next()>>40) / float32(1<<24)
}

// Fill fills dst with independent, uniformly distributed values in
// [-1, 1).
func (g *Generator) Fill(dst []float32) {
	for i := range dst {
		dst[i] = g.NextFloat32()*2 - 1
	}
}

// FillUnit fills dst like Fill, then rescales it in place to unit L2
// norm, matching the engine's convention that stored and query vectors
// are unit-normalized so that dot product equals cosine similarity. A
// degenerate all-zero draw (astronomically unlikely) is left as-is rather
// than dividing by zero.
func (g *Generator) FillUnit(dst []float32) {
	g.Fill(dst)
	var sumSq float64
	for _, v := range dst {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i, v := range dst {
		dst[i] = float32(float64(v) / norm)
	}
}

// Fork returns a new Generator whose stream is statistically independent
// of, and never overlaps, this one's for up to 2^128 outputs from either.
// Used to hand each parallel worker its own generator without shared
// mutable state.
func (g *Generator) Fork() *Generator {
	forked := &Generator{rng: g.rng.clone()}
	g.rng.jump()
	return forked
}

// LongFork is like Fork but separates the two streams by 2^192 outputs
// instead of 2^128, for callers that fork far more often than they draw.
func (g *Generator) LongFork() *Generator {
	forked := &Generator{rng: g.rng.clone()}
	g.rng.longJump()
	return forked
}
