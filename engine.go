package feedback

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// minShapeScale keeps random shape sizes away from a singular placement.
const minShapeScale = 1e-4

// Engine runs the feedback loop on a Surface: every Draw composites the
// previous frame through the accumulation transform, overlays the pointer
// and random disturbances, and snapshots the result back into the state.
//
// An Engine is not safe for concurrent use. All calls are expected from the
// single frame callback goroutine.
type Engine struct {
	surface Surface
	cfg     Config
	rng     Rand
	log     *slog.Logger

	gravity float64
	rotate  float64
	accum   Transform

	pointer Pointer
	spring  *pointerSpring
	noise   bool

	idle   int // frames since the pointer was last present
	frames uint64

	debug bool
	stats frameStats
}

// NewEngine builds an engine on s. It fails with ErrNoSurface when s is nil
// or has no pixels.
func NewEngine(s Surface, cfg Config) (*Engine, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	if w, h := s.Size(); w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrNoSurface, w, h)
	}
	cfg = cfg.withDefaults()
	e := &Engine{
		surface: s,
		cfg:     cfg,
		rng:     cfg.Rand,
		log:     cfg.Logger,
		gravity: cfg.Gravity,
		rotate:  cfg.Rotate,
		noise:   cfg.Noise,
		spring:  newPointerSpring(cfg.PointerSpring),
	}
	e.accum = accumulationTransform(e.gravity, e.rotate)
	e.pointer = Pointer{
		Kind:       cfg.PointerShape,
		Size:       cfg.PointerSize,
		Spin:       cfg.PointerSpin,
		Color:      RandomColor(e.rng),
		ColorSpeed: cfg.ColorSpeed,
	}
	return e, nil
}

// accumulationTransform is the per-frame zoom-and-turn applied to the
// previous frame.
func accumulationTransform(gravity, rotate float64) Transform {
	s := 1 / gravity
	return Affine(0, 0, s, s, rotate)
}

// Surface returns the surface the engine draws on.
func (e *Engine) Surface() Surface { return e.surface }

// Frames returns the number of completed frames.
func (e *Engine) Frames() uint64 { return e.frames }

// Gravity returns the current decay factor.
func (e *Engine) Gravity() float64 { return e.gravity }

// Rotate returns the current rotation per frame in radians.
func (e *Engine) Rotate() float64 { return e.rotate }

// Accumulation returns the current accumulation transform.
func (e *Engine) Accumulation() Transform { return e.accum }

// Draw renders one frame.
//
// A failing draw call abandons the rest of the frame: the state keeps the
// previous frame and the error wraps ErrDrawFailed. The next Draw starts
// fresh.
func (e *Engine) Draw() error {
	var start time.Time
	if e.debug {
		start = time.Now()
		e.stats = frameStats{}
	}

	if err := e.surface.BeginFrame(); err != nil {
		return e.frameError("begin", err)
	}
	if e.cfg.Trail == TrailDouble {
		if err := e.surface.DrawState(identityTransform); err != nil {
			return e.frameError("state pass", err)
		}
	}
	if err := e.surface.DrawState(e.accum); err != nil {
		return e.frameError("trail pass", err)
	}

	if e.pointer.Present {
		pos := e.pointer.Position
		if e.spring != nil {
			pos = e.spring.step(pos)
		}
		p := &e.pointer
		if err := e.fill(p.Kind, p.Color, pos.X, pos.Y, p.Size, p.Angle); err != nil {
			return e.frameError("pointer", err)
		}
		e.idle = 0
	} else {
		e.idle++
	}

	if e.noise {
		if err := e.maybeDisturb(); err != nil {
			return e.frameError("disturb", err)
		}
	}

	if e.cfg.PointerColor == PointerColorDrift {
		Perturb(&e.pointer.Color, e.pointer.ColorSpeed, e.rng)
	}
	e.pointer.Angle += e.pointer.Spin

	if err := e.surface.Snapshot(); err != nil {
		return e.frameError("snapshot", err)
	}
	e.frames++

	if e.debug {
		e.stats.total = time.Since(start)
		e.debugLog()
	}
	return nil
}

// maybeDisturb injects at most one disturbance, or occasionally a burst
// after a long idle stretch.
func (e *Engine) maybeDisturb() error {
	chance := e.cfg.NoiseIdle
	if e.pointer.Present {
		chance = e.cfg.NoiseActive
	}
	if e.rng.Float64() < chance {
		return e.Disturb()
	}
	period := e.cfg.BurstPeriod
	if period > 0 && e.idle > period && e.rng.IntN(e.idle) > period {
		e.idle = 0
		return e.burst(e.cfg.BurstSize)
	}
	return nil
}

// Disturb draws one random shape: random kind and color (fully opaque),
// uniform position, normally distributed size, uniform angle.
func (e *Engine) Disturb() error {
	kind := shapeKinds[e.rng.IntN(len(shapeKinds))]
	c := RandomColor(e.rng)
	c.A = 1
	x := e.rng.Float64()*2 - 1
	y := e.rng.Float64()*2 - 1
	s := e.rng.NormFloat64() * e.cfg.DisturbScale
	if math.Abs(s) < minShapeScale {
		s = math.Copysign(minShapeScale, s)
	}
	a := e.rng.Float64() * 2 * math.Pi
	if e.debug {
		e.stats.disturbances++
	}
	return e.fill(kind, c, x, y, s, a)
}

// Burst draws n disturbances onto the drawable target and snapshots them
// into the state immediately, so they show up even while stopped.
func (e *Engine) Burst(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: burst of %d", ErrInvalidParameter, n)
	}
	if err := e.surface.BeginFrame(); err != nil {
		return e.frameError("burst", err)
	}
	if err := e.surface.DrawState(identityTransform); err != nil {
		return e.frameError("burst", err)
	}
	if err := e.burst(n); err != nil {
		return e.frameError("burst", err)
	}
	if err := e.surface.Snapshot(); err != nil {
		return e.frameError("burst", err)
	}
	return nil
}

func (e *Engine) burst(n int) error {
	e.log.Debug("feedback: burst", "shapes", n)
	for range n {
		if err := e.Disturb(); err != nil {
			return err
		}
	}
	return nil
}

// fill draws one shape with the current accumulation transform.
func (e *Engine) fill(kind ShapeKind, c Color, tx, ty, size, angle float64) error {
	if e.debug {
		e.stats.shapes++
	}
	return e.surface.FillShape(kind, c, Affine(tx, ty, size, size, angle), e.accum)
}

func (e *Engine) frameError(stage string, err error) error {
	e.log.Warn("feedback: frame dropped", "frame", e.frames, "stage", stage, "err", err)
	return fmt.Errorf("feedback: frame %d %s: %w", e.frames, stage, err)
}

// Adjust multiplies an accumulation parameter by factor and rebuilds the
// accumulation transform in the same call. Gravity is clamped to
// [MinGravity, MaxGravity], so two adjustments equal one by their product
// only while neither step hits a bound. Non-finite or non-positive factors
// are rejected and leave the engine unchanged.
func (e *Engine) Adjust(p Param, factor float64) error {
	if !finite(factor) || factor <= 0 {
		return fmt.Errorf("%w: %s factor %v", ErrInvalidParameter, p, factor)
	}
	gravity, rotate := e.gravity, e.rotate
	switch p {
	case ParamGravity:
		gravity = clampGravity(gravity * factor)
	case ParamRotate:
		rotate *= factor
	default:
		return fmt.Errorf("%w: unknown parameter %d", ErrInvalidParameter, p)
	}
	accum := accumulationTransform(gravity, rotate)
	if !accum.IsInvertible() {
		return fmt.Errorf("%w: %s factor %v gives a singular transform", ErrInvalidParameter, p, factor)
	}
	e.gravity, e.rotate, e.accum = gravity, rotate, accum
	e.log.Debug("feedback: adjust", "param", p.String(), "gravity", gravity, "rotate", rotate)
	return nil
}

// AdjustNamed is Adjust with the parameter given by name ("gravity" or
// "rotate").
func (e *Engine) AdjustNamed(name string, factor float64) error {
	p, ok := ParseParam(name)
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameter, name)
	}
	return e.Adjust(p, factor)
}

// ParseParam returns the Param with the given name.
func ParseParam(name string) (Param, bool) {
	switch name {
	case "gravity":
		return ParamGravity, true
	case "rotate":
		return ParamRotate, true
	}
	return 0, false
}

// --- Pointer ---

// Pointer returns a copy of the pointer state.
func (e *Engine) Pointer() Pointer { return e.pointer }

// SetPointer places the pointer at (x, y) in NDC and marks it present.
func (e *Engine) SetPointer(x, y float64) {
	if !e.pointer.Present && e.spring != nil {
		e.spring.reset()
	}
	e.pointer.Position = Vec2{X: x, Y: y}
	e.pointer.Present = true
}

// PointerMoved places the pointer at surface pixel (px, py).
func (e *Engine) PointerMoved(px, py float64) {
	w, h := e.surface.Size()
	p := NormalizePointer(px, py, w, h)
	e.SetPointer(p.X, p.Y)
}

// PointerLeft hides the pointer shape until the next move.
func (e *Engine) PointerLeft() {
	e.pointer.Present = false
}

// SetPointerColor replaces the pointer color.
func (e *Engine) SetPointerColor(c Color) {
	e.pointer.Color = c
}

// SetPointerSize sets the pointer half-extent in NDC units.
func (e *Engine) SetPointerSize(size float64) error {
	if !finite(size) || size <= 0 {
		return fmt.Errorf("%w: pointer size %v", ErrInvalidParameter, size)
	}
	e.pointer.Size = size
	return nil
}

// CyclePointerShape switches the pointer to the next shape and returns it.
func (e *Engine) CyclePointerShape() ShapeKind {
	e.pointer.Kind = e.pointer.Kind.next()
	return e.pointer.Kind
}

// --- Noise and clearing ---

// Noise reports whether random disturbances are enabled.
func (e *Engine) Noise() bool { return e.noise }

// SetNoise enables or disables random disturbances.
func (e *Engine) SetNoise(on bool) { e.noise = on }

// ToggleNoise flips random disturbances and returns the new setting.
func (e *Engine) ToggleNoise() bool {
	e.noise = !e.noise
	return e.noise
}

// Clear paints the state with the configured clear color.
func (e *Engine) Clear() error {
	return e.ClearTo(e.cfg.ClearColor)
}

// ClearTo paints the state with c.
func (e *Engine) ClearTo(c Color) error {
	if err := e.surface.Clear(c); err != nil {
		return fmt.Errorf("feedback: clear: %w", err)
	}
	e.log.Info("feedback: cleared", "color", c)
	return nil
}
