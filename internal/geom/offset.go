package geom

import "math"

// Context carries the placement and tool compensation shared by every
// primitive of one chain. It is a plain value: a chain holds exactly one,
// queries receive it as a parameter, and duplicating a chain copies it.
type Context struct {
	Origin   Point2D    `json:"origin"`   // translation applied after rotation
	Rotation float64    `json:"rotation"` // degrees, about the local origin
	Side     float64    `json:"side"`     // +1 right of travel, -1 left, 0 on the line
	Tool     float64    `json:"tool"`     // tool radius
	Eval     float64    `json:"eval"`     // extra radial distance, e.g. taper
	Z        [2]float64 `json:"z"`        // depth at start and end
}

// Distance is the total lateral compensation.
func (c Context) Distance() float64 {
	return c.Tool + c.Eval
}

// Neutral returns a context that leaves geometry untouched but keeps the
// side and depth, for geometry that already carries its compensation.
func (c Context) Neutral() Context {
	return Context{Side: c.Side, Z: c.Z}
}

// Offset is the tool-compensated form of a primitive.
type Offset struct {
	Kind       Kind
	Origin     Point2D // start point
	End        Point2D
	Center     Point2D // arcs only
	Radius     float64 // arcs only, never negative
	StartAngle float64 // arcs only
	Sweep      float64 // arcs only, unchanged by the transform
}

// Primitive rebuilds raw geometry from the offset result.
func (o Offset) Primitive() Primitive {
	if o.Kind == KindArc {
		return &Arc{Pos: o.Origin, Radius: o.Radius, StartAngle: o.StartAngle, Sweep: o.Sweep}
	}
	return &Line{P0: o.Origin, P1: o.End}
}

// Bounds returns the bounding box of the offset geometry.
func (o Offset) Bounds() Rect {
	r := RectOf(o.Origin, o.End)
	if o.Kind != KindArc {
		return r
	}
	for _, a := range []float64{0, 90, 180, 270} {
		if AngleWithinArc(o.StartAngle, o.Sweep, a) {
			r = r.Extend(o.Center.Add(Dir(a).Mul(o.Radius)))
		}
	}
	return r
}

// WithOffset maps a primitive's raw geometry to tool-compensated geometry.
// The raw geometry is rotated by ctx.Rotation about the local origin and
// translated by ctx.Origin, then moved sideways by ctx.Distance(). Arc radii
// are clamped at zero; a zero-radius arc is a valid result.
func WithOffset(p Primitive, ctx Context) Offset {
	switch p := p.(type) {
	case *Line:
		return p.offset(ctx)
	case *Arc:
		return p.offset(ctx)
	}
	return Offset{}
}

func (l *Line) offset(ctx Context) Offset {
	p0 := l.P0.Rotate(ctx.Rotation).Add(ctx.Origin)
	p1 := l.P1.Rotate(ctx.Rotation).Add(ctx.Origin)
	if d := ctx.Distance(); d != 0 && ctx.Side != 0 {
		n := rightNormal(p0, p1).Mul(ctx.Side * d)
		p0, p1 = p0.Add(n), p1.Add(n)
	}
	return Offset{Kind: KindLine, Origin: p0, End: p1}
}

func (a *Arc) offset(ctx Context) Offset {
	pos := a.Pos.Rotate(ctx.Rotation).Add(ctx.Origin)
	start := a.StartAngle + ctx.Rotation
	center := pos.Sub(Dir(start).Mul(a.Radius))

	flip := ctx.Side
	if a.Sweep < 0 {
		flip = -flip
	}
	r := math.Max(0, a.Radius+flip*ctx.Distance())

	return Offset{
		Kind:       KindArc,
		Origin:     center.Add(Dir(start).Mul(r)),
		End:        center.Add(Dir(start + a.Sweep).Mul(r)),
		Center:     center,
		Radius:     r,
		StartAngle: start,
		Sweep:      a.Sweep,
	}
}

// rightNormal is the unit perpendicular of (from - to), which points to the
// right of the direction of travel from -> to.
func rightNormal(from, to Point2D) Point2D {
	v := from.Sub(to)
	return Point2D{X: -v.Y, Y: v.X}.Normalize()
}
