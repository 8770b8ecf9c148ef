package feedback

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Transform) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Affine ---

func TestAffineIdentity(t *testing.T) {
	assertMatrix(t, "affine(0,0,1,1,0)", Affine(0, 0, 1, 1, 0), Identity())
}

func TestAffine(t *testing.T) {
	tests := []struct {
		name                string
		tx, ty, sx, sy, rot float64
		want                Transform
	}{
		{"translation", 10, 20, 1, 1, 0, Transform{1, 0, 0, 1, 10, 20}},
		{"scale", 0, 0, 2, 3, 0, Transform{2, 0, 0, 3, 0, 0}},
		{"rot90", 0, 0, 1, 1, math.Pi / 2, Transform{0, 1, -1, 0, 0, 0}},
		{"rot90 scaled", 0, 0, 2, 3, math.Pi / 2, Transform{0, 2, -3, 0, 0, 0}},
		{"all", 5, -5, 2, 2, math.Pi, Transform{-2, 0, 0, -2, 5, -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertMatrix(t, tt.name, Affine(tt.tx, tt.ty, tt.sx, tt.sy, tt.rot), tt.want)
		})
	}
}

func TestAffineOrderScaleRotateTranslate(t *testing.T) {
	// (1, 0) scaled by 2 → (2, 0), rotated 90° → (0, 2), translated → (3, 2).
	m := Affine(3, 0, 2, 2, math.Pi/2)
	x, y := m.Apply(1, 0)
	assertNear(t, "x", x, 3)
	assertNear(t, "y", y, 2)
}

func TestAffineSingular(t *testing.T) {
	if Affine(0, 0, 0, 1, 0).IsInvertible() {
		t.Error("zero x scale should be singular")
	}
	if Affine(0, 0, math.NaN(), 1, 0).IsInvertible() {
		t.Error("NaN scale should not be invertible")
	}
	if Affine(0, 0, math.Inf(1), 1, 0).IsInvertible() {
		t.Error("infinite scale should not be invertible")
	}
}

// --- Multiply ---

func TestMultiplyAppliesRightFirst(t *testing.T) {
	scale := Affine(0, 0, 2, 2, 0)
	move := Affine(1, 0, 1, 1, 0)

	// move.Multiply(scale): scale then move. (1,0) → (2,0) → (3,0).
	x, _ := move.Multiply(scale).Apply(1, 0)
	assertNear(t, "move*scale x", x, 3)

	// scale.Multiply(move): move then scale. (1,0) → (2,0) → (4,0).
	x, _ = scale.Multiply(move).Apply(1, 0)
	assertNear(t, "scale*move x", x, 4)
}

func TestMultiplyIdentity(t *testing.T) {
	m := Affine(3, -2, 1.5, 0.5, 0.7)
	assertMatrix(t, "I*m", Identity().Multiply(m), m)
	assertMatrix(t, "m*I", m.Multiply(Identity()), m)
}

// --- Invert ---

func TestInvertRoundTrip(t *testing.T) {
	tests := []Transform{
		Identity(),
		Affine(3, -2, 1.5, 0.5, 0.7),
		Affine(0, 0, 1/0.98, 1/0.98, 2.5),
		Affine(-0.4, 0.9, -0.16, -0.16, 5.1),
	}
	for _, m := range tests {
		inv, ok := m.Invert()
		if !ok {
			t.Fatalf("Invert(%v) not ok", m)
		}
		assertMatrix(t, "m*inv", m.Multiply(inv), Identity())
		assertMatrix(t, "inv*m", inv.Multiply(m), Identity())
	}
}

func TestInvertSingular(t *testing.T) {
	inv, ok := Transform{1, 2, 2, 4, 0, 0}.Invert()
	if ok {
		t.Error("Invert of singular matrix should report false")
	}
	assertMatrix(t, "fallback", inv, Identity())
}

func TestDeterminant(t *testing.T) {
	assertNear(t, "det", Affine(0, 0, 2, 3, 1.1).Determinant(), 6)
}

// --- NDC mapping ---

func TestNDCPixelMapping(t *testing.T) {
	toPx := ndcToPixel(200, 100)
	tests := []struct {
		nx, ny, px, py float64
	}{
		{-1, 1, 0, 0},
		{1, -1, 200, 100},
		{0, 0, 100, 50},
		{1, 1, 200, 0},
	}
	for _, tt := range tests {
		px, py := toPx.Apply(tt.nx, tt.ny)
		assertNear(t, "px", px, tt.px)
		assertNear(t, "py", py, tt.py)
	}
	assertMatrix(t, "round trip", pixelToNDC(200, 100).Multiply(toPx), Identity())
}

func TestQuadBounds(t *testing.T) {
	tests := []struct {
		name           string
		m              Transform
		x0, y0, x1, y1 int
		ok             bool
	}{
		{"full", Identity(), 0, 0, 8, 4, true},
		{"half", Affine(0, 0, 0.5, 0.5, 0), 2, 1, 6, 3, true},
		{"grown clipped", Affine(0, 0, 3, 3, 0), 0, 0, 8, 4, true},
		{"offscreen", Affine(5, 5, 0.1, 0.1, 0), 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x0, y0, x1, y1, ok := quadBounds(tt.m, 8, 4)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if x0 != tt.x0 || y0 != tt.y0 || x1 != tt.x1 || y1 != tt.y1 {
				t.Errorf("bounds = (%d,%d)-(%d,%d), want (%d,%d)-(%d,%d)",
					x0, y0, x1, y1, tt.x0, tt.y0, tt.x1, tt.y1)
			}
		})
	}
}
