// Package geom holds the 2D geometry kernel: the Line and Arc primitives,
// the tool-radius offset transform and the pairwise intersection engine.
//
// All angles are in degrees. Sweeps are signed: negative is clockwise,
// positive is counter-clockwise.
package geom

import "math"

// Point2D is a 2D coordinate or vector.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience constructor.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns p+q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales p by s.
func (p Point2D) Mul(s float64) Point2D {
	return Point2D{X: p.X * s, Y: p.Y * s}
}

// Dot returns the dot product.
func (p Point2D) Dot(q Point2D) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the z component of the 3D cross product.
func (p Point2D) Cross(q Point2D) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Length returns the magnitude of p.
func (p Point2D) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// LengthSquared returns the squared magnitude of p.
func (p Point2D) LengthSquared() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 {
	return p.Sub(q).Length()
}

// Normalize returns a unit vector in the direction of p, or the zero vector
// when p has no length.
func (p Point2D) Normalize() Point2D {
	l := p.Length()
	if l == 0 {
		return Point2D{}
	}
	return Point2D{X: p.X / l, Y: p.Y / l}
}

// Rotate rotates p about the origin by deg degrees counter-clockwise.
func (p Point2D) Rotate(deg float64) Point2D {
	if deg == 0 {
		return p
	}
	s, c := math.Sincos(Deg2Rad(deg))
	return Point2D{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Angle returns the direction of p in degrees, in [0, 360).
func (p Point2D) Angle() float64 {
	return NormalizeAngle(Rad2Deg(math.Atan2(p.Y, p.X)))
}

// Dir returns the unit vector pointing at deg degrees.
func Dir(deg float64) Point2D {
	s, c := math.Sincos(Deg2Rad(deg))
	return Point2D{X: c, Y: s}
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min Point2D `json:"min"`
	Max Point2D `json:"max"`
}

// EmptyRect returns an inverted box that any Extend call will replace.
func EmptyRect() Rect {
	inf := math.Inf(1)
	return Rect{Min: Point2D{X: inf, Y: inf}, Max: Point2D{X: -inf, Y: -inf}}
}

// RectOf returns the bounding box of the given points.
func RectOf(pts ...Point2D) Rect {
	r := EmptyRect()
	for _, p := range pts {
		r = r.Extend(p)
	}
	return r
}

// Empty reports whether the box contains no points.
func (r Rect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Extend grows r to include p.
func (r Rect) Extend(p Point2D) Rect {
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
	return r
}

// Union returns the smallest box containing both r and s.
func (r Rect) Union(s Rect) Rect {
	if s.Empty() {
		return r
	}
	if r.Empty() {
		return s
	}
	return r.Extend(s.Min).Extend(s.Max)
}

// Contains reports whether p lies inside r, boundary included, with
// Precision slack on every side.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.Min.X-Precision && p.X <= r.Max.X+Precision &&
		p.Y >= r.Min.Y-Precision && p.Y <= r.Max.Y+Precision
}

// Width is the extent of r along X.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height is the extent of r along Y.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}
