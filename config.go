package feedback

import (
	"log/slog"
	"math"
)

// Defaults used by DefaultConfig and to repair invalid Config fields.
const (
	DefaultGravity      = 0.98
	DefaultRotate       = 2.5
	DefaultPointerSize  = 0.1
	DefaultPointerSpin  = 0.05
	DefaultColorSpeed   = 0.01
	DefaultNoiseIdle    = 1.0 / 3
	DefaultNoiseActive  = 1.0 / 5
	DefaultDisturbScale = 0.16
	DefaultBurstSize    = 50
	DefaultBurstPeriod  = 200

	// MinGravity and MaxGravity bound the decay factor so that the
	// accumulation scale 1/gravity stays finite and always zooms in.
	MinGravity = 0.01
	MaxGravity = 0.999
)

// Config selects the engine variant and its tuning. Start from
// DefaultConfig; out-of-range fields are replaced by defaults when the
// engine is built.
type Config struct {
	// Gravity is the decay factor in [MinGravity, MaxGravity]. The
	// accumulation transform scales by its reciprocal.
	Gravity float64
	// Rotate is the accumulation rotation per frame, in radians.
	Rotate float64
	// Trail selects single or double compositing of the previous frame.
	Trail TrailMode

	// PointerColor selects whether the pointer color drifts.
	PointerColor PointerColorMode
	// PointerShape is the initial pointer shape.
	PointerShape ShapeKind
	// PointerSize is the half-extent of the pointer shape in NDC units.
	PointerSize float64
	// PointerSpin is added to the pointer angle every frame.
	PointerSpin float64
	// ColorSpeed scales the per-frame pointer color perturbation.
	ColorSpeed float64
	// PointerSpring smooths pointer motion. The zero value disables it.
	PointerSpring SpringConfig

	// Noise enables random disturbances.
	Noise bool
	// NoiseIdle is the per-frame disturbance probability without a pointer.
	NoiseIdle float64
	// NoiseActive is the per-frame disturbance probability with a pointer.
	NoiseActive float64
	// DisturbScale is the standard deviation of disturbance sizes.
	DisturbScale float64
	// BurstSize is the number of disturbances injected by a burst.
	BurstSize int
	// BurstPeriod is the idle frame count after which a burst becomes
	// possible while the pointer is away. Zero disables periodic bursts.
	BurstPeriod int

	// ClearColor is what Clear paints. The zero value means opaque black.
	ClearColor Color

	// Rand supplies randomness. Nil builds one from Seed.
	Rand Rand
	// Seed seeds the default Rand. Zero seeds from the clock.
	Seed uint64
	// Logger overrides the package logger for this engine.
	Logger *slog.Logger
}

// DefaultConfig returns the classic feedback look: double trail, drifting
// pointer color, noise on.
func DefaultConfig() Config {
	return Config{
		Gravity:      DefaultGravity,
		Rotate:       DefaultRotate,
		Trail:        TrailDouble,
		PointerColor: PointerColorDrift,
		PointerShape: ShapeCircle,
		PointerSize:  DefaultPointerSize,
		PointerSpin:  DefaultPointerSpin,
		ColorSpeed:   DefaultColorSpeed,
		Noise:        true,
		NoiseIdle:    DefaultNoiseIdle,
		NoiseActive:  DefaultNoiseActive,
		DisturbScale: DefaultDisturbScale,
		BurstSize:    DefaultBurstSize,
		BurstPeriod:  DefaultBurstPeriod,
		ClearColor:   ColorBlack,
	}
}

// withDefaults returns a copy of c with invalid fields repaired.
func (c Config) withDefaults() Config {
	if !finite(c.Gravity) || c.Gravity <= 0 {
		c.Gravity = DefaultGravity
	}
	c.Gravity = clampGravity(c.Gravity)
	if !finite(c.Rotate) {
		c.Rotate = DefaultRotate
	}
	if !finite(c.PointerSize) || c.PointerSize <= 0 {
		c.PointerSize = DefaultPointerSize
	}
	if !finite(c.PointerSpin) {
		c.PointerSpin = DefaultPointerSpin
	}
	if !finite(c.ColorSpeed) || c.ColorSpeed < 0 {
		c.ColorSpeed = DefaultColorSpeed
	}
	if !finite(c.NoiseIdle) || c.NoiseIdle < 0 || c.NoiseIdle > 1 {
		c.NoiseIdle = DefaultNoiseIdle
	}
	if !finite(c.NoiseActive) || c.NoiseActive < 0 || c.NoiseActive > 1 {
		c.NoiseActive = DefaultNoiseActive
	}
	if !finite(c.DisturbScale) || c.DisturbScale <= 0 {
		c.DisturbScale = DefaultDisturbScale
	}
	c.BurstSize = max(c.BurstSize, 0)
	c.BurstPeriod = max(c.BurstPeriod, 0)
	if int(c.PointerShape) >= len(shapeKinds) {
		c.PointerShape = ShapeCircle
	}
	if c.ClearColor == (Color{}) {
		c.ClearColor = ColorBlack
	}
	if c.Rand == nil {
		c.Rand = NewRand(c.Seed)
	}
	if c.Logger == nil {
		c.Logger = Logger()
	}
	return c
}

func clampGravity(g float64) float64 {
	return math.Min(math.Max(g, MinGravity), MaxGravity)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
