package feedback

import "github.com/charmbracelet/harmonica"

// SpringConfig enables damped-spring smoothing of the drawn pointer
// position. Frequency zero disables smoothing.
type SpringConfig struct {
	// FPS is the frame rate the spring integrates at. Zero means 60.
	FPS int
	// Frequency is the angular frequency; higher is snappier.
	Frequency float64
	// Damping is the damping ratio; 1 is critically damped.
	Damping float64
}

// Pointer is the interactive shape that follows the cursor.
type Pointer struct {
	// Position is the target position in NDC, valid when Present.
	Position Vec2
	// Present is false while the cursor is outside the surface.
	Present bool
	Kind    ShapeKind
	Size    float64
	Angle   float64
	Spin    float64
	Color   Color
	// ColorSpeed scales the per-frame color perturbation.
	ColorSpeed float64
}

// pointerSpring tracks the smoothed position and velocity on both axes.
type pointerSpring struct {
	spring   harmonica.Spring
	pos, vel Vec2
	settled  bool
}

func newPointerSpring(cfg SpringConfig) *pointerSpring {
	if cfg.Frequency <= 0 {
		return nil
	}
	fps := cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	return &pointerSpring{
		spring: harmonica.NewSpring(harmonica.FPS(fps), cfg.Frequency, cfg.Damping),
	}
}

// step moves the smoothed position one frame toward target and returns it.
func (s *pointerSpring) step(target Vec2) Vec2 {
	if !s.settled {
		s.pos, s.vel, s.settled = target, Vec2{}, true
		return s.pos
	}
	s.pos.X, s.vel.X = s.spring.Update(s.pos.X, s.vel.X, target.X)
	s.pos.Y, s.vel.Y = s.spring.Update(s.pos.Y, s.vel.Y, target.Y)
	return s.pos
}

// reset makes the next step jump straight to its target.
func (s *pointerSpring) reset() {
	s.settled = false
}

// NormalizePointer converts surface pixel coordinates (origin top-left,
// Y down) to NDC in [-1,1]² with Y up.
func NormalizePointer(px, py float64, w, h int) Vec2 {
	return Vec2{
		X: px/float64(w)*2 - 1,
		Y: (float64(h)-py)/float64(h)*2 - 1,
	}
}
