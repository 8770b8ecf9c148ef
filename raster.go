package feedback

import (
	"errors"
	"fmt"
	"math"
)

var errDisposed = errors.New("surface disposed")

// SoftwareSurface is a CPU implementation of Surface. It needs no GPU or
// window, produces the same compositing results as EbitenSurface, and allows
// pixel readback at any time, which makes it the surface of choice for
// tests and headless rendering.
type SoftwareSurface struct {
	w, h   int
	blend  BlendMode
	filter Filter

	// Premultiplied RGBA, row-major from the top-left.
	state  []float32
	target []float32

	// fresh is set by BeginFrame until the first draw lands on the target.
	fresh    bool
	disposed bool
}

// NewSoftwareSurface creates a w×h software surface. The state starts
// transparent.
func NewSoftwareSurface(w, h int, opts SurfaceOptions) (*SoftwareSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrNoSurface, w, h)
	}
	return &SoftwareSurface{
		w:      w,
		h:      h,
		blend:  opts.Blend,
		filter: opts.Filter,
		state:  make([]float32, 4*w*h),
		target: make([]float32, 4*w*h),
	}, nil
}

// Size returns the surface dimensions in pixels.
func (s *SoftwareSurface) Size() (int, int) {
	return s.w, s.h
}

// Blend returns the surface blend mode.
func (s *SoftwareSurface) Blend() BlendMode {
	return s.blend
}

// BeginFrame clears the drawable target.
func (s *SoftwareSurface) BeginFrame() error {
	if s.disposed {
		return drawError("begin frame", errDisposed)
	}
	clear(s.target)
	s.fresh = true
	return nil
}

// DrawState composites the state texture through m.
func (s *SoftwareSurface) DrawState(m Transform) error {
	if s.disposed {
		return drawError("draw state", errDisposed)
	}
	inv, ok := m.Invert()
	if !ok {
		return fmt.Errorf("%w: singular state transform %v", ErrInvalidParameter, m)
	}
	mode := s.blend
	if s.fresh {
		mode = BlendNone
	}
	s.fresh = false
	x0, y0, x1, y1, visible := quadBounds(m, s.w, s.h)
	if !visible {
		return nil
	}
	toNDC := pixelToNDC(s.w, s.h)
	fw, fh := float64(s.w), float64(s.h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			nx, ny := toNDC.Apply(float64(px)+0.5, float64(py)+0.5)
			lx, ly := inv.Apply(nx, ny)
			if lx < -1 || lx > 1 || ly < -1 || ly > 1 {
				continue
			}
			u := (lx + 1) / 2 * fw
			v := (1 - ly) / 2 * fh
			s.blendAt(px, py, mode, s.sample(u, v))
		}
	}
	return nil
}

// FillShape composites a procedural shape.
func (s *SoftwareSurface) FillShape(kind ShapeKind, c Color, placement, accumulation Transform) error {
	if s.disposed {
		return drawError("fill shape", errDisposed)
	}
	m := accumulation.Multiply(placement)
	inv, ok := m.Invert()
	if !ok {
		return fmt.Errorf("%w: singular shape transform %v", ErrInvalidParameter, m)
	}
	s.fresh = false
	x0, y0, x1, y1, visible := quadBounds(m, s.w, s.h)
	if !visible {
		return nil
	}
	src := c.premul()
	toNDC := pixelToNDC(s.w, s.h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			nx, ny := toNDC.Apply(float64(px)+0.5, float64(py)+0.5)
			lx, ly := inv.Apply(nx, ny)
			if kind.contains(lx, ly) {
				s.blendAt(px, py, s.blend, src)
			}
		}
	}
	return nil
}

// Snapshot copies the drawable target into the state.
func (s *SoftwareSurface) Snapshot() error {
	if s.disposed {
		return drawError("snapshot", errDisposed)
	}
	copy(s.state, s.target)
	return nil
}

// Clear fills the state with c.
func (s *SoftwareSurface) Clear(c Color) error {
	if s.disposed {
		return drawError("clear", errDisposed)
	}
	p := c.premul()
	for i := 0; i < len(s.state); i += 4 {
		s.state[i] = float32(p[0])
		s.state[i+1] = float32(p[1])
		s.state[i+2] = float32(p[2])
		s.state[i+3] = float32(p[3])
	}
	return nil
}

// ReadState copies the state as premultiplied RGBA bytes.
func (s *SoftwareSurface) ReadState(dst []byte) error {
	return s.read("read state", s.state, dst)
}

// ReadTarget copies the drawable target as premultiplied RGBA bytes.
func (s *SoftwareSurface) ReadTarget(dst []byte) error {
	return s.read("read target", s.target, dst)
}

// Dispose releases the buffers.
func (s *SoftwareSurface) Dispose() {
	s.state = nil
	s.target = nil
	s.disposed = true
}

func (s *SoftwareSurface) read(op string, buf []float32, dst []byte) error {
	if s.disposed {
		return drawError(op, errDisposed)
	}
	if len(dst) != len(buf) {
		return fmt.Errorf("%w: %s buffer has %d bytes, want %d", ErrInvalidParameter, op, len(dst), len(buf))
	}
	for i, v := range buf {
		dst[i] = uint8(clamp01(float64(v))*255 + 0.5)
	}
	return nil
}

// blendAt blends a premultiplied fragment into the target pixel (px, py).
func (s *SoftwareSurface) blendAt(px, py int, mode BlendMode, src [4]float64) {
	i := 4 * (py*s.w + px)
	dst := [4]float64{
		float64(s.target[i]),
		float64(s.target[i+1]),
		float64(s.target[i+2]),
		float64(s.target[i+3]),
	}
	out := mode.blendPremul(src, dst)
	s.target[i] = float32(out[0])
	s.target[i+1] = float32(out[1])
	s.target[i+2] = float32(out[2])
	s.target[i+3] = float32(out[3])
}

// sample reads the state at pixel-space coordinates (u, v) with
// clamp-to-edge addressing.
func (s *SoftwareSurface) sample(u, v float64) [4]float64 {
	if s.filter != FilterLinear {
		return s.texel(int(math.Floor(u)), int(math.Floor(v)))
	}
	u -= 0.5
	v -= 0.5
	x0 := math.Floor(u)
	y0 := math.Floor(v)
	fx := u - x0
	fy := v - y0
	ix, iy := int(x0), int(y0)
	c00 := s.texel(ix, iy)
	c10 := s.texel(ix+1, iy)
	c01 := s.texel(ix, iy+1)
	c11 := s.texel(ix+1, iy+1)
	var out [4]float64
	for i := range out {
		top := c00[i]*(1-fx) + c10[i]*fx
		bottom := c01[i]*(1-fx) + c11[i]*fx
		out[i] = top*(1-fy) + bottom*fy
	}
	return out
}

func (s *SoftwareSurface) texel(x, y int) [4]float64 {
	x = min(max(x, 0), s.w-1)
	y = min(max(y, 0), s.h-1)
	i := 4 * (y*s.w + x)
	return [4]float64{
		float64(s.state[i]),
		float64(s.state[i+1]),
		float64(s.state[i+2]),
		float64(s.state[i+3]),
	}
}
