package feedback

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestNewRenderTextureSize(t *testing.T) {
	rt := NewRenderTexture(128, 64)
	defer rt.Release()

	if w, h := rt.Size(); w != 128 || h != 64 {
		t.Errorf("Size = %dx%d, want 128x64", w, h)
	}
	if rt.Image() == nil {
		t.Error("Image() should not be nil")
	}
}

func TestRenderTextureResetPaintCopy(t *testing.T) {
	a := NewRenderTexture(4, 4)
	defer a.Release()
	b := NewRenderTexture(4, 4)
	defer b.Release()

	// Should not panic.
	a.Reset()
	a.Paint(Color{1, 0, 0, 1})
	b.CopyFrom(a)
}

func TestRenderTextureRelease(t *testing.T) {
	rt := NewRenderTexture(16, 16)
	rt.Release()

	if rt.Image() != nil {
		t.Error("Image() should be nil after Release")
	}

	// Double release should not panic.
	rt.Release()
}

// --- EbitenSurface ---

func TestNewEbitenSurfaceInvalidSize(t *testing.T) {
	if _, err := NewEbitenSurface(0, 10, SurfaceOptions{}); err == nil {
		t.Error("NewEbitenSurface(0, 10) should fail")
	}
}

func TestEbitenSurfaceFrame(t *testing.T) {
	s, err := NewEbitenSurface(32, 24, SurfaceOptions{Filter: FilterLinear})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Dispose()
	if w, h := s.Size(); w != 32 || h != 24 {
		t.Errorf("Size = %dx%d, want 32x24", w, h)
	}
	if s.State() == nil || s.Target() == nil {
		t.Fatal("images should be allocated")
	}

	// Should not panic. Pixels cannot be read before the game loop runs.
	mustNoErr(t, s.Clear(ColorBlack))
	mustNoErr(t, s.BeginFrame())
	mustNoErr(t, s.DrawState(Identity()))
	mustNoErr(t, s.FillShape(ShapeCircle, Color{1, 1, 0, 1}, Affine(0, 0, 0.2, 0.2, 0), Identity()))
	mustNoErr(t, s.Snapshot())
}

func TestEbitenSurfaceDisposed(t *testing.T) {
	s, err := NewEbitenSurface(8, 8, SurfaceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	s.Dispose()
	if err := s.BeginFrame(); err == nil {
		t.Error("BeginFrame after Dispose should fail")
	}
	if s.State() != nil {
		t.Error("State() should be nil after Dispose")
	}
	s.Dispose()
}

func TestSetGeoMMatchesTransform(t *testing.T) {
	m := Affine(3, -4, 2, 0.5, 0.3)
	var g ebiten.GeoM
	setGeoM(&g, m)
	for _, p := range [][2]float64{{0, 0}, {1, 0}, {0, 1}, {-2.5, 7}} {
		gx, gy := g.Apply(p[0], p[1])
		mx, my := m.Apply(p[0], p[1])
		// GeoM stores float32 elements.
		if math.Abs(gx-mx) > 1e-4 || math.Abs(gy-my) > 1e-4 {
			t.Errorf("GeoM.Apply(%v) = (%v, %v), want (%v, %v)", p, gx, gy, mx, my)
		}
	}
}

func TestShapeUniforms(t *testing.T) {
	u := newShapeUniforms()
	vals := u.set(ShapeSquare, Color{1, 0.5, 0, 0.5})
	if vals["Kind"] != float32(1) {
		t.Errorf("Kind = %v, want 1", vals["Kind"])
	}
	got := vals["Color"].([]float32)
	want := []float32{0.5, 0.25, 0, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Color[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if vals["Size"] != float32(shapeRectSize) {
		t.Errorf("Size = %v, want %d", vals["Size"], shapeRectSize)
	}
}
