package feedback

import "math"

// Transform is a 2D affine matrix stored as [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
//
// Transforms are values. Builders return fresh copies; nothing in this
// package mutates a Transform after it has been handed to a renderer.
type Transform [6]float64

// identityTransform is the identity affine matrix.
var identityTransform = Transform{1, 0, 0, 1, 0, 0}

// singularEpsilon is the determinant magnitude below which a matrix is
// treated as non-invertible.
const singularEpsilon = 1e-12

// Identity returns the identity transform.
func Identity() Transform {
	return identityTransform
}

// Affine builds translate(tx, ty) * rotate(angle) * scale(sx, sy).
// Points are scaled first, then rotated counter-clockwise by angle radians,
// then translated.
func Affine(tx, ty, sx, sy, angle float64) Transform {
	sin, cos := math.Sincos(angle)
	return Transform{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		tx,
		ty,
	}
}

// Multiply returns m * n. The result applies n first, then m.
func (m Transform) Multiply(n Transform) Transform {
	return Transform{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

// Determinant returns the determinant of the linear part.
func (m Transform) Determinant() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// IsInvertible reports whether the matrix has a usable inverse and holds no
// NaN or infinite entries.
func (m Transform) IsInvertible() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	det := m.Determinant()
	return det < -singularEpsilon || det > singularEpsilon
}

// Invert returns the inverse of m. The second result is false, and the
// identity is returned, when m is singular.
func (m Transform) Invert() (Transform, bool) {
	if !m.IsInvertible() {
		return identityTransform, false
	}
	invDet := 1.0 / m.Determinant()
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Transform{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// Apply transforms the point (x, y).
func (m Transform) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Near reports whether every entry of m is within tol of the matching entry of n.
func (m Transform) Near(n Transform, tol float64) bool {
	for i := range m {
		if math.Abs(m[i]-n[i]) > tol {
			return false
		}
	}
	return true
}

// ndcToPixel maps normalized device coordinates ([-1,1]², Y up) to pixel
// coordinates of a w×h image (origin top-left, Y down).
func ndcToPixel(w, h int) Transform {
	hw := float64(w) / 2
	hh := float64(h) / 2
	return Transform{hw, 0, 0, -hh, hw, hh}
}

// pixelToNDC is the inverse of ndcToPixel.
func pixelToNDC(w, h int) Transform {
	return Transform{2 / float64(w), 0, 0, -2 / float64(h), -1, 1}
}

// quadBounds returns the pixel-space bounding box of the unit quad [-1,1]²
// after applying m (an NDC transform) on a w×h target, clipped to the target.
// ok is false when the quad falls entirely outside.
func quadBounds(m Transform, w, h int) (x0, y0, x1, y1 int, ok bool) {
	toPx := ndcToPixel(w, h).Multiply(m)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		px, py := toPx.Apply(c[0], c[1])
		minX = math.Min(minX, px)
		minY = math.Min(minY, py)
		maxX = math.Max(maxX, px)
		maxY = math.Max(maxY, py)
	}
	x0 = max(int(math.Floor(minX)), 0)
	y0 = max(int(math.Floor(minY)), 0)
	x1 = min(int(math.Ceil(maxX)), w)
	y1 = min(int(math.Ceil(maxY)), h)
	return x0, y0, x1, y1, x0 < x1 && y0 < y1
}
