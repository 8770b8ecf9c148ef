package feedback

import "github.com/hajimehoshi/ebiten/v2"

// RenderTexture is one of the two GPU buffers behind an EbitenSurface: the
// drawable target or the persistent state. Its size is fixed at creation.
type RenderTexture struct {
	img    *ebiten.Image
	w, h   int
	copyOp ebiten.DrawImageOptions
}

// NewRenderTexture allocates a transparent w×h buffer.
func NewRenderTexture(w, h int) *RenderTexture {
	rt := &RenderTexture{img: ebiten.NewImage(w, h), w: w, h: h}
	rt.copyOp.Blend = ebiten.BlendCopy
	return rt
}

// Size returns the buffer dimensions in pixels.
func (rt *RenderTexture) Size() (int, int) { return rt.w, rt.h }

// Image returns the backing image, or nil after Release.
func (rt *RenderTexture) Image() *ebiten.Image { return rt.img }

// Reset makes every pixel transparent.
func (rt *RenderTexture) Reset() { rt.img.Clear() }

// Paint floods the buffer with c, premultiplied.
func (rt *RenderTexture) Paint(c Color) { rt.img.Fill(c.toRGBA()) }

// CopyFrom overwrites the buffer with src pixel for pixel. Both buffers
// must be the same size.
func (rt *RenderTexture) CopyFrom(src *RenderTexture) {
	rt.img.DrawImage(src.img, &rt.copyOp)
}

// ReadPixels copies premultiplied RGBA bytes into dst. Only valid while the
// game loop runs.
func (rt *RenderTexture) ReadPixels(dst []byte) {
	rt.img.ReadPixels(dst)
}

// Release frees the GPU memory. Safe to call twice.
func (rt *RenderTexture) Release() {
	if rt.img == nil {
		return
	}
	rt.img.Deallocate()
	rt.img = nil
}
