package feedback

import (
	"math/rand/v2"
	"time"
)

// Rand is the source of randomness for colors and disturbances. Inject a
// seeded source to make frames reproducible.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// NormFloat64 returns a standard-normal value.
	NormFloat64() float64
	// IntN returns a uniform value in [0, n). n must be positive.
	IntN(n int) int
}

// NewRand returns a PCG-backed Rand. A zero seed picks one from the clock.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
