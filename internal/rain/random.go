package rain

import "math/rand/v2"

// Random is the only source of randomness the engine and overlay use.
// Tests substitute a scripted implementation.
type Random interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) IntN(n int) int   { return rand.IntN(n) }

// NewRandom returns the process-wide source.
func NewRandom() Random { return globalRandom{} }

// RandomInt returns a uniform integer in [min, max]. A reversed range yields min.
func RandomInt(r Random, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min+1)
}
