// Package rng provides the deterministic PRNG the engine uses for every
// stochastic draw. PCG32 is fast, simple, and its algorithm is fixed forever
// (unlike math/rand, whose algorithm is only guaranteed stable within a Go
// version) -- required for the determinism contract: same seed, same
// config, bit-identical output across runs and Go versions.
package rng

import "math"

// PCG32 implements the PCG-XSH-RR variant. Algorithm from
// https://www.pcg-random.org/.
type PCG32 struct {
	state uint64
	inc   uint64
}

// NewPCG32 creates a PCG32 generator seeded deterministically from seed.
func NewPCG32(seed int64) *PCG32 {
	p := &PCG32{}
	p.Seed(seed)
	return p
}

// Seed reinitializes the generator, discarding all prior state.
func (p *PCG32) Seed(seed int64) {
	p.state = 0
	p.inc = (uint64(seed) << 1) | 1 // inc must be odd
	p.Uint32()
	p.state += uint64(seed)
	p.Uint32()
}

// Uint32 returns a uniformly distributed uint32.
func (p *PCG32) Uint32() uint32 {
	oldstate := p.state
	p.state = oldstate*6364136223846793005 + p.inc
	xorshifted := uint32(((oldstate >> 18) ^ oldstate) >> 27)
	rot := uint32(oldstate >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Uint64 returns a uniformly distributed uint64.
func (p *PCG32) Uint64() uint64 {
	return (uint64(p.Uint32()) << 32) | uint64(p.Uint32())
}

// Float64 returns a uniformly distributed float64 in [0, 1), using 53 bits
// of precision like math/rand.
func (p *PCG32) Float64() float64 {
	return float64(p.Uint64()>>11) / (1 << 53)
}

// NormFloat64 returns a standard-normal float64 via Box-Muller.
func (p *PCG32) NormFloat64() float64 {
	for {
		u1 := p.Float64()
		u2 := p.Float64()
		if u1 > 0 { // avoid log(0)
			return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		}
	}
}

// splitMix64 is used only to derive well-mixed per-iteration seeds from a
// visible master seed; it is never used as the simulation's own generator.
func splitMix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Substream derives a disjoint PCG32 stream for (masterSeed, iteration), so
// that N iterations can run in any order -- or in parallel across workers --
// without perturbing any iteration's output.
func Substream(masterSeed int64, iteration int) *PCG32 {
	mixed := splitMix64(uint64(masterSeed) ^ (uint64(iteration) * 0x9E3779B97F4A7C15))
	return NewPCG32(int64(mixed))
}
