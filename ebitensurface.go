package feedback

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenSurface is a GPU Surface backed by two Ebitengine images: the
// drawable target and the persistent state texture.
//
// Pixel reads (ReadState, ReadTarget) are only possible once the game loop
// is running, a restriction of Ebitengine.
type EbitenSurface struct {
	w, h   int
	blend  BlendMode
	filter Filter

	state  *RenderTexture
	target *RenderTexture

	toPixel  Transform // NDC -> target pixels
	fromRect Transform // shape rectangle pixels -> unit quad
	fromTex  Transform // state texture pixels -> unit quad

	uniforms *shapeUniforms
	fresh    bool
	imageOp  ebiten.DrawImageOptions
	shaderOp ebiten.DrawRectShaderOptions
}

// NewEbitenSurface creates a w×h GPU surface.
func NewEbitenSurface(w, h int, opts SurfaceOptions) (*EbitenSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrNoSurface, w, h)
	}
	return &EbitenSurface{
		w:        w,
		h:        h,
		blend:    opts.Blend,
		filter:   opts.Filter,
		state:    NewRenderTexture(w, h),
		target:   NewRenderTexture(w, h),
		toPixel:  ndcToPixel(w, h),
		fromRect: pixelToNDC(shapeRectSize, shapeRectSize),
		fromTex:  pixelToNDC(w, h),
		uniforms: newShapeUniforms(),
	}, nil
}

// Size returns the surface dimensions in pixels.
func (s *EbitenSurface) Size() (int, int) {
	return s.w, s.h
}

// Blend returns the surface blend mode.
func (s *EbitenSurface) Blend() BlendMode {
	return s.blend
}

// Target returns the drawable target image, for presenting on screen.
func (s *EbitenSurface) Target() *ebiten.Image {
	if s.target == nil {
		return nil
	}
	return s.target.Image()
}

// State returns the persistent state image. It holds the last completed
// frame, including clears made while the loop is stopped.
func (s *EbitenSurface) State() *ebiten.Image {
	if s.state == nil {
		return nil
	}
	return s.state.Image()
}

// BeginFrame clears the drawable target.
func (s *EbitenSurface) BeginFrame() error {
	if s.target == nil {
		return drawError("begin frame", errDisposed)
	}
	s.target.Reset()
	s.fresh = true
	return nil
}

// DrawState composites the state texture through m.
func (s *EbitenSurface) DrawState(m Transform) error {
	if s.target == nil {
		return drawError("draw state", errDisposed)
	}
	if !m.IsInvertible() {
		return fmt.Errorf("%w: singular state transform %v", ErrInvalidParameter, m)
	}
	op := &s.imageOp
	*op = ebiten.DrawImageOptions{}
	setGeoM(&op.GeoM, s.toPixel.Multiply(m).Multiply(s.fromTex))
	op.Blend = s.blend.EbitenBlend()
	if s.fresh {
		op.Blend = ebiten.BlendCopy
	}
	s.fresh = false
	op.Filter = s.filter.EbitenFilter()
	s.target.Image().DrawImage(s.state.Image(), op)
	return nil
}

// FillShape composites a procedural shape with the shape shader.
func (s *EbitenSurface) FillShape(kind ShapeKind, c Color, placement, accumulation Transform) error {
	if s.target == nil {
		return drawError("fill shape", errDisposed)
	}
	m := accumulation.Multiply(placement)
	if !m.IsInvertible() {
		return fmt.Errorf("%w: singular shape transform %v", ErrInvalidParameter, m)
	}
	s.fresh = false
	op := &s.shaderOp
	*op = ebiten.DrawRectShaderOptions{}
	setGeoM(&op.GeoM, s.toPixel.Multiply(m).Multiply(s.fromRect))
	op.Uniforms = s.uniforms.set(kind, c)
	op.Blend = s.blend.EbitenBlend()
	s.target.Image().DrawRectShader(shapeRectSize, shapeRectSize, ensureShapeShader(), op)
	return nil
}

// Snapshot copies the drawable target into the state texture.
func (s *EbitenSurface) Snapshot() error {
	if s.target == nil {
		return drawError("snapshot", errDisposed)
	}
	s.state.CopyFrom(s.target)
	return nil
}

// Clear fills the state texture with c.
func (s *EbitenSurface) Clear(c Color) error {
	if s.state == nil {
		return drawError("clear", errDisposed)
	}
	s.state.Paint(c)
	return nil
}

// ReadState reads the state texture back from the GPU.
func (s *EbitenSurface) ReadState(dst []byte) error {
	return s.read("read state", s.state, dst)
}

// ReadTarget reads the drawable target back from the GPU.
func (s *EbitenSurface) ReadTarget(dst []byte) error {
	return s.read("read target", s.target, dst)
}

// Dispose deallocates both images.
func (s *EbitenSurface) Dispose() {
	if s.state != nil {
		s.state.Release()
		s.state = nil
	}
	if s.target != nil {
		s.target.Release()
		s.target = nil
	}
}

func (s *EbitenSurface) read(op string, rt *RenderTexture, dst []byte) error {
	if rt == nil {
		return drawError(op, errDisposed)
	}
	if len(dst) != 4*s.w*s.h {
		return fmt.Errorf("%w: %s buffer has %d bytes, want %d", ErrInvalidParameter, op, len(dst), 4*s.w*s.h)
	}
	rt.ReadPixels(dst)
	return nil
}

// setGeoM loads an affine Transform into an ebiten.GeoM.
func setGeoM(g *ebiten.GeoM, m Transform) {
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
}
