package feedback

import "github.com/hajimehoshi/ebiten/v2"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorBlack is opaque black, the color Clear paints the state with.
var ColorBlack = Color{0, 0, 0, 1}

// ColorTransparent is fully transparent black, the state of a new surface.
var ColorTransparent = Color{}

// Vec2 is a 2D vector in normalized device coordinates.
type Vec2 struct {
	X, Y float64
}

// BlendMode selects how new fragments combine with the drawable target.
// It is fixed per surface at construction.
type BlendMode uint8

const (
	BlendFeedback BlendMode = iota // src*srcAlpha + dst*srcAlpha (the classic feedback mix)
	BlendNormal                    // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendNone                      // opaque copy (skip blending)
)

var blendNames = [...]string{"feedback", "normal", "add", "multiply", "screen", "none"}

// String returns the lower-case name of the blend mode.
func (b BlendMode) String() string {
	if int(b) < len(blendNames) {
		return blendNames[b]
	}
	return "unknown"
}

// ParseBlendMode returns the BlendMode with the given name.
func ParseBlendMode(name string) (BlendMode, bool) {
	for i, n := range blendNames {
		if n == name {
			return BlendMode(i), true
		}
	}
	return BlendFeedback, false
}

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
// Ebitengine works on premultiplied colors, so the feedback mode's source
// factor is One: premultiplied src equals straight src*srcAlpha.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendFeedback:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// blendPremul combines a premultiplied source fragment with a premultiplied
// destination pixel the same way EbitenBlend configures the GPU.
// Results are clamped to [0, 1].
func (b BlendMode) blendPremul(src, dst [4]float64) [4]float64 {
	var out [4]float64
	sa := src[3]
	switch b {
	case BlendFeedback:
		for i := range out {
			out[i] = src[i] + dst[i]*sa
		}
	case BlendAdd:
		for i := range out {
			out[i] = src[i] + dst[i]
		}
	case BlendMultiply:
		for i := 0; i < 3; i++ {
			out[i] = src[i]*dst[i] + dst[i]*(1-sa)
		}
		out[3] = sa*dst[3] + dst[3]*(1-sa)
	case BlendScreen:
		for i := 0; i < 3; i++ {
			out[i] = src[i] + dst[i]*(1-src[i])
		}
		out[3] = sa + dst[3]*(1-sa)
	case BlendNone:
		out = src
	default:
		for i := range out {
			out[i] = src[i] + dst[i]*(1-sa)
		}
	}
	for i := range out {
		out[i] = clamp01(out[i])
	}
	return out
}

// ShapeKind selects a procedural shape drawn inside the unit quad.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota // x² + y² ≤ 1
	ShapeSquare                  // the whole quad
)

// shapeKinds lists every ShapeKind in cycling order.
var shapeKinds = [...]ShapeKind{ShapeCircle, ShapeSquare}

// String returns the lower-case name of the shape.
func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeSquare:
		return "square"
	default:
		return "unknown"
	}
}

// contains reports whether the quad-local point (x, y) lies inside the shape.
func (k ShapeKind) contains(x, y float64) bool {
	if x < -1 || x > 1 || y < -1 || y > 1 {
		return false
	}
	switch k {
	case ShapeCircle:
		return x*x+y*y <= 1
	default:
		return true
	}
}

// next returns the shape after k in cycling order.
func (k ShapeKind) next() ShapeKind {
	return shapeKinds[(int(k)+1)%len(shapeKinds)]
}

// TrailMode selects how the previous frame is composited.
type TrailMode uint8

const (
	// TrailDouble draws the state once undistorted and once through the
	// accumulation transform.
	TrailDouble TrailMode = iota
	// TrailSingle draws the state only through the accumulation transform.
	TrailSingle
)

// PointerColorMode selects whether the pointer color drifts each frame.
type PointerColorMode uint8

const (
	PointerColorDrift PointerColorMode = iota // perturbed every frame
	PointerColorFixed                         // stays at its initial value
)

// Filter selects how the state texture is sampled when transformed.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

// EbitenFilter returns the matching ebiten.Filter.
func (f Filter) EbitenFilter() ebiten.Filter {
	if f == FilterLinear {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}

// Param names an accumulation parameter adjustable at run time.
type Param uint8

const (
	ParamGravity Param = iota // decay factor; the accumulation scale is its reciprocal
	ParamRotate               // rotation per frame in radians
)

// String returns the parameter name.
func (p Param) String() string {
	switch p {
	case ParamGravity:
		return "gravity"
	case ParamRotate:
		return "rotate"
	default:
		return "unknown"
	}
}
