package geom

// Line is a straight segment from P0 to P1.
type Line struct {
	P0 Point2D `json:"p0"`
	P1 Point2D `json:"p1"`
}

// NewLine returns a line between two points.
func NewLine(x0, y0, x1, y1 float64) *Line {
	return &Line{P0: Pt(x0, y0), P1: Pt(x1, y1)}
}

func (l *Line) isPrimitive() {}

// Kind returns KindLine.
func (l *Line) Kind() Kind { return KindLine }

// Ends returns P0 and P1.
func (l *Line) Ends() (Point2D, Point2D) {
	return l.P0, l.P1
}

// SetEnds replaces both endpoints.
func (l *Line) SetEnds(p0, p1 Point2D) {
	l.P0, l.P1 = p0, p1
}

// OffsetEnds returns the endpoints placed and offset by ctx.
func (l *Line) OffsetEnds(ctx Context) (Point2D, Point2D) {
	o := l.offset(ctx)
	return o.Origin, o.End
}

// Normals returns the right-hand unit normal twice.
func (l *Line) Normals() (Point2D, Point2D) {
	n := rightNormal(l.P0, l.P1)
	return n, n
}

// Tangents returns the unit direction from P0 to P1 twice.
func (l *Line) Tangents() (Point2D, Point2D) {
	t := l.P1.Sub(l.P0).Normalize()
	return t, t
}

// Eval appends the x where the offset line crosses y. A horizontal line
// on the row contributes both of its ends.
func (l *Line) Eval(ctx Context, y float64, xs []float64) ([]float64, bool) {
	o := l.offset(ctx)
	p0, p1 := o.Origin, o.End
	lo, hi := p0.Y, p1.Y
	if lo > hi {
		lo, hi = hi, lo
	}
	if y < lo-Precision || y > hi+Precision {
		return xs, false
	}
	dy := p1.Y - p0.Y
	if Near(dy, 0) {
		// horizontal: both ends bound the row
		return append(xs, p0.X, p1.X), true
	}
	t := (y - p0.Y) / dy
	return append(xs, p0.X+t*(p1.X-p0.X)), true
}

// Length is the distance from P0 to P1.
func (l *Line) Length() float64 {
	return l.P0.Distance(l.P1)
}

// AABB is the bounding box of the offset line.
func (l *Line) AABB(ctx Context) Rect {
	return l.offset(ctx).Bounds()
}

// Duplicate returns an independent copy.
func (l *Line) Duplicate() Primitive {
	c := *l
	return &c
}

// Scale multiplies both endpoints by factor about the origin.
func (l *Line) Scale(factor float64) {
	l.P0 = l.P0.Mul(factor)
	l.P1 = l.P1.Mul(factor)
}

// FlipDirection swaps P0 and P1.
func (l *Line) FlipDirection() {
	l.P0, l.P1 = l.P1, l.P0
}
