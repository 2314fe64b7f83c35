package geom

import "math"

// Arc is a circular arc described by its start point, radius, start angle
// and signed sweep. The start angle is the direction from the center to
// Pos, so the center sits at Pos - Radius*Dir(StartAngle).
type Arc struct {
	Pos        Point2D `json:"pos"`
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"start_angle"` // degrees
	Sweep      float64 `json:"sweep"`       // degrees, negative is clockwise
}

// NewArcCenter builds an arc from its center, radius, start angle and sweep.
func NewArcCenter(center Point2D, radius, startAngle, sweep float64) *Arc {
	return &Arc{
		Pos:        center.Add(Dir(startAngle).Mul(radius)),
		Radius:     radius,
		StartAngle: startAngle,
		Sweep:      sweep,
	}
}

func (a *Arc) isPrimitive() {}

// Kind returns KindArc.
func (a *Arc) Kind() Kind { return KindArc }

// Center returns the raw arc center.
func (a *Arc) Center() Point2D {
	return a.Pos.Sub(Dir(a.StartAngle).Mul(a.Radius))
}

// EndAngle is StartAngle+Sweep, not normalized.
func (a *Arc) EndAngle() float64 {
	return a.StartAngle + a.Sweep
}

// End returns the raw end point.
func (a *Arc) End() Point2D {
	return a.Center().Add(Dir(a.EndAngle()).Mul(a.Radius))
}

// Clockwise reports whether the arc travels clockwise.
func (a *Arc) Clockwise() bool {
	return a.Sweep < 0
}

// Ends returns Pos and the computed end point.
func (a *Arc) Ends() (Point2D, Point2D) {
	return a.Pos, a.End()
}

// SetEnds moves Pos to p0, carrying the whole arc with it. The end point
// cannot be set independently.
func (a *Arc) SetEnds(p0, _ Point2D) {
	a.Pos = p0
}

// OffsetEnds returns the endpoints of the arc offset by ctx.
func (a *Arc) OffsetEnds(ctx Context) (Point2D, Point2D) {
	o := a.offset(ctx)
	return o.Origin, o.End
}

// Normals points outward from the center for counter-clockwise arcs and
// inward for clockwise arcs, which is the right-hand side of travel.
func (a *Arc) Normals() (Point2D, Point2D) {
	n0, n1 := Dir(a.StartAngle), Dir(a.EndAngle())
	if a.Clockwise() {
		return n0.Mul(-1), n1.Mul(-1)
	}
	return n0, n1
}

// Tangents returns unit tangents in the direction of travel.
func (a *Arc) Tangents() (Point2D, Point2D) {
	tangent := func(deg float64) Point2D {
		s, c := math.Sincos(Deg2Rad(deg))
		t := Point2D{X: s, Y: -c}
		if a.Sweep > 0 {
			t = t.Mul(-1)
		}
		return t
	}
	return tangent(a.StartAngle), tangent(a.EndAngle())
}

// Eval appends the x values where the offset arc crosses y, at most two.
func (a *Arc) Eval(ctx Context, y float64, xs []float64) ([]float64, bool) {
	o := a.offset(ctx)
	box := o.Bounds()
	if y < box.Min.Y-Precision || y > box.Max.Y+Precision {
		return xs, false
	}

	dy := y - o.Center.Y
	h2 := o.Radius*o.Radius - dy*dy
	if h2 < 0 {
		h2 = 0
	}
	h := math.Sqrt(h2)

	candidates := []float64{o.Center.X - h, o.Center.X + h}
	if h < Precision {
		candidates = candidates[:1]
		candidates[0] = o.Center.X
	}
	for _, x := range candidates {
		angle := Point2D{X: x - o.Center.X, Y: dy}.Angle()
		if AngleWithinArc(o.StartAngle, o.Sweep, angle) {
			xs = append(xs, x)
		}
	}
	return xs, true
}

// Length is the arc length of the raw arc.
func (a *Arc) Length() float64 {
	return math.Abs(Deg2Rad(a.Sweep)) * a.Radius
}

// AABB is the bounding box of the offset arc, extremes included.
func (a *Arc) AABB(ctx Context) Rect {
	return a.offset(ctx).Bounds()
}

// Duplicate returns an independent copy.
func (a *Arc) Duplicate() Primitive {
	c := *a
	return &c
}

// Scale multiplies Pos and Radius by factor about the origin.
func (a *Arc) Scale(factor float64) {
	a.Pos = a.Pos.Mul(factor)
	a.Radius *= factor
}

// FlipDirection reverses travel: the end becomes Pos and the sweep
// changes sign.
func (a *Arc) FlipDirection() {
	end := a.End()
	a.Pos = end
	a.StartAngle = NormalizeAngle(a.EndAngle())
	a.Sweep = -a.Sweep
}
