package feedback

import "github.com/hajimehoshi/ebiten/v2"

// shapeShaderSrc draws one procedural shape inside a Size×Size rectangle.
// The rectangle maps to the unit quad [-1,1]²; Kind 0 keeps the inscribed
// circle, any other kind keeps the whole quad. Color is premultiplied.
const shapeShaderSrc = `//kage:unit pixels
package main

var Color vec4
var Kind float
var Size float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	p := src/Size*2 - 1
	if Kind < 0.5 && dot(p, p) > 1 {
		discard()
	}
	return Color
}
`

// shapeRectSize is the pixel size of the rectangle the shape shader covers
// before transformation. It only affects edge precision.
const shapeRectSize = 256

// --- Lazy shader compilation (no sync.Once; rendering is single-threaded) ---

var shapeShader *ebiten.Shader

func ensureShapeShader() *ebiten.Shader {
	if shapeShader == nil {
		s, err := ebiten.NewShader([]byte(shapeShaderSrc))
		if err != nil {
			panic("feedback: failed to compile shape shader: " + err.Error())
		}
		shapeShader = s
	}
	return shapeShader
}

// shapeUniforms holds the shader uniforms reused across draws so the map
// and slice do not escape every call.
type shapeUniforms struct {
	values map[string]any
	color  [4]float32
	slice  []float32
}

func newShapeUniforms() *shapeUniforms {
	u := &shapeUniforms{values: make(map[string]any, 3)}
	u.slice = u.color[:]
	u.values["Color"] = u.slice
	u.values["Size"] = float32(shapeRectSize)
	return u
}

// set loads the premultiplied color and kind for the next draw.
func (u *shapeUniforms) set(kind ShapeKind, c Color) map[string]any {
	p := c.premul()
	for i := range u.color {
		u.color[i] = float32(p[i])
	}
	u.values["Kind"] = float32(kind)
	return u.values
}
