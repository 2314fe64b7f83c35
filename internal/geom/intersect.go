package geom

import "math"

// discriminantSnap absorbs float error in near-tangent line/circle cases:
// discriminants in (discriminantSnap, 0) are treated as exactly zero.
const discriminantSnap = -1e-10

// Intersect returns the points where the offset forms of a and b meet.
// It reports false on a miss; a miss is an expected outcome, not an error.
func Intersect(a, b Primitive, ctx Context) ([]Point2D, bool) {
	return IntersectOffsets(WithOffset(a, ctx), WithOffset(b, ctx))
}

// IntersectOffsets dispatches on the kinds of two offset primitives.
func IntersectOffsets(a, b Offset) ([]Point2D, bool) {
	switch {
	case a.Kind == KindLine && b.Kind == KindLine:
		return IntersectLines(a, b)
	case a.Kind == KindLine && b.Kind == KindArc:
		return IntersectLineArc(a, b)
	case a.Kind == KindArc && b.Kind == KindLine:
		return IntersectLineArc(b, a)
	case a.Kind == KindArc && b.Kind == KindArc:
		return IntersectArcs(a, b)
	}
	return nil, false
}

// IntersectLines intersects two segments. The point must fall inside both
// segments' bounding boxes; parallel and near-parallel lines miss.
func IntersectLines(a, b Offset) ([]Point2D, bool) {
	a1 := a.End.Y - a.Origin.Y
	b1 := a.Origin.X - a.End.X
	c1 := a1*a.Origin.X + b1*a.Origin.Y

	a2 := b.End.Y - b.Origin.Y
	b2 := b.Origin.X - b.End.X
	c2 := a2*b.Origin.X + b2*b.Origin.Y

	det := a1*b2 - a2*b1
	if math.Abs(det) < Precision {
		return nil, false
	}

	p := Point2D{
		X: (b2*c1 - b1*c2) / det,
		Y: (a1*c2 - a2*c1) / det,
	}
	if !RectOf(a.Origin, a.End).Contains(p) || !RectOf(b.Origin, b.End).Contains(p) {
		return nil, false
	}
	return []Point2D{p}, true
}

// IntersectLineArc intersects a segment with an arc. A tangent line yields
// exactly one point.
func IntersectLineArc(line, arc Offset) ([]Point2D, bool) {
	c := arc.Center
	p0 := line.Origin.Sub(c)
	p1 := line.End.Sub(c)

	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	dr2 := dx*dx + dy*dy
	if dr2 < Precision*Precision {
		return nil, false
	}
	det := p0.X*p1.Y - p1.X*p0.Y
	disc := arc.Radius*arc.Radius*dr2 - det*det
	if disc < 0 && disc > discriminantSnap {
		disc = 0
	}
	if disc < 0 {
		return nil, false
	}

	sgn := 1.0
	if dy < 0 {
		sgn = -1
	}
	root := math.Sqrt(disc)
	candidates := []Point2D{
		{X: (det*dy + sgn*dx*root) / dr2, Y: (-det*dx + math.Abs(dy)*root) / dr2},
		{X: (det*dy - sgn*dx*root) / dr2, Y: (-det*dx - math.Abs(dy)*root) / dr2},
	}
	if disc == 0 || PointsCoincide(candidates[0], candidates[1]) {
		candidates = candidates[:1]
	}

	box := RectOf(line.Origin, line.End)
	var hits []Point2D
	for _, q := range candidates {
		world := q.Add(c)
		if !box.Contains(world) {
			continue
		}
		if !AngleWithinArc(arc.StartAngle, arc.Sweep, q.Angle()) {
			continue
		}
		hits = append(hits, world)
	}
	return hits, len(hits) > 0
}

// Concentric reports whether two arcs share a center, the case IntersectArcs
// treats as a miss whatever the radii.
func Concentric(a, b Offset) bool {
	return PointsCoincide(a.Center, b.Center)
}

// IntersectArcs intersects two arcs with the radical-line construction.
// Coincident, disjoint and nested circles miss.
func IntersectArcs(a, b Offset) ([]Point2D, bool) {
	if Concentric(a, b) {
		return nil, false
	}
	delta := b.Center.Sub(a.Center)
	d := delta.Length()
	if d > a.Radius+b.Radius+Precision {
		return nil, false
	}
	if d < math.Abs(a.Radius-b.Radius)-Precision {
		return nil, false
	}

	along := (a.Radius*a.Radius - b.Radius*b.Radius + d*d) / (2 * d)
	h2 := a.Radius*a.Radius - along*along
	if h2 < 0 {
		h2 = 0
	}
	h := math.Sqrt(h2)

	unit := delta.Mul(1 / d)
	base := a.Center.Add(unit.Mul(along))
	candidates := []Point2D{base}
	if h >= Precision {
		perp := Point2D{X: -unit.Y, Y: unit.X}.Mul(h)
		candidates = []Point2D{base.Add(perp), base.Sub(perp)}
	}

	var hits []Point2D
	for _, p := range candidates {
		if !AngleWithinArc(a.StartAngle, a.Sweep, p.Sub(a.Center).Angle()) {
			continue
		}
		if !AngleWithinArc(b.StartAngle, b.Sweep, p.Sub(b.Center).Angle()) {
			continue
		}
		hits = append(hits, p)
	}
	return hits, len(hits) > 0
}
