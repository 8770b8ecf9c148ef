package feedback

import "image/color"

// minPerturbedAlpha keeps drifting colors visible.
const minPerturbedAlpha = 0.5

// RandomColor returns a color with uniform R, G, B and an alpha in [0.5, 1).
func RandomColor(r Rand) Color {
	return Color{
		R: r.Float64(),
		G: r.Float64(),
		B: r.Float64(),
		A: r.Float64()*0.5 + 0.5,
	}
}

// Perturb nudges every channel of c by a normal sample scaled by rate,
// clamps each channel to [0, 1] and raises alpha to at least 0.5. c is
// modified in place and its new value returned.
//
// Clamping makes this a walk that sticks to the boundaries: after many
// calls channels tend to sit at 0 or 1.
func Perturb(c *Color, rate float64, r Rand) Color {
	c.R = clamp01(c.R + r.NormFloat64()*rate)
	c.G = clamp01(c.G + r.NormFloat64()*rate)
	c.B = clamp01(c.B + r.NormFloat64()*rate)
	c.A = clamp01(c.A + r.NormFloat64()*rate)
	c.A = max(c.A, minPerturbedAlpha)
	return *c
}

// premul returns the color as premultiplied components.
func (c Color) premul() [4]float64 {
	a := clamp01(c.A)
	return [4]float64{clamp01(c.R) * a, clamp01(c.G) * a, clamp01(c.B) * a, a}
}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	p := c.premul()
	return color.RGBA{
		R: uint8(p[0]*255 + 0.5),
		G: uint8(p[1]*255 + 0.5),
		B: uint8(p[2]*255 + 0.5),
		A: uint8(p[3]*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	if v != v { // NaN
		return 0
	}
	return v
}
