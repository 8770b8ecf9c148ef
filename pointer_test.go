package feedback

import (
	"math"
	"testing"
)

func TestNormalizePointer(t *testing.T) {
	tests := []struct {
		px, py float64
		want   Vec2
	}{
		{0, 0, Vec2{-1, 1}},
		{640, 480, Vec2{1, -1}},
		{320, 240, Vec2{0, 0}},
		{480, 120, Vec2{0.5, 0.5}},
	}
	for _, tt := range tests {
		got := NormalizePointer(tt.px, tt.py, 640, 480)
		assertNear(t, "x", got.X, tt.want.X)
		assertNear(t, "y", got.Y, tt.want.Y)
	}
}

func TestPointerSpringDisabled(t *testing.T) {
	if newPointerSpring(SpringConfig{}) != nil {
		t.Error("zero frequency should disable the spring")
	}
}

func TestPointerSpringConverges(t *testing.T) {
	s := newPointerSpring(SpringConfig{Frequency: 6, Damping: 1})
	first := s.step(Vec2{0.5, -0.5})
	if first != (Vec2{0.5, -0.5}) {
		t.Errorf("first step = %v, want jump to target", first)
	}

	target := Vec2{-0.5, 0.5}
	prev := first
	for i := 0; i < 120; i++ {
		p := s.step(target)
		// Critically damped: never overshoots toward the target.
		if p.X < target.X-1e-9 || p.Y > target.Y+1e-9 {
			t.Fatalf("step %d overshot: %v", i, p)
		}
		if i == 0 && p == prev {
			t.Error("spring did not move on the first step")
		}
		prev = p
	}
	if math.Abs(prev.X-target.X) > 1e-3 || math.Abs(prev.Y-target.Y) > 1e-3 {
		t.Errorf("after 2s position = %v, want near %v", prev, target)
	}
}

func TestPointerSpringResetOnReenter(t *testing.T) {
	cfg := quietConfig()
	cfg.PointerSpring = SpringConfig{Frequency: 4, Damping: 0.5}
	e := newTestEngine(t, newSpySurface(), cfg)
	e.SetPointer(0.9, 0.9)
	mustNoErr(t, e.Draw())
	e.PointerLeft()
	e.SetPointer(-0.9, -0.9)
	if got := e.spring.step(Vec2{-0.9, -0.9}); got != (Vec2{-0.9, -0.9}) {
		t.Errorf("after re-enter spring = %v, want jump to new position", got)
	}
}
