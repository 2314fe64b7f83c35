package geom

// Kind identifies the concrete type behind a Primitive.
type Kind int

const (
	KindLine Kind = iota + 1 // straight segment
	KindArc                  // circular arc
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLine:
		return "Line"
	case KindArc:
		return "Arc"
	default:
		return "Unknown"
	}
}

// Primitive is a single profile element. The set of implementations is
// closed: it is satisfied by *Line and *Arc only, and callers that need the
// concrete geometry use a type switch.
//
// Queries that take a Context answer for the tool-compensated geometry
// (see WithOffset). The others answer for the raw geometry.
type Primitive interface {
	Kind() Kind

	// Ends returns the raw start and end points.
	Ends() (p0, p1 Point2D)
	// SetEnds moves the raw endpoints in place. An Arc only takes p0 as its
	// new start position; p1 is ignored.
	SetEnds(p0, p1 Point2D)
	// OffsetEnds returns the start and end points after WithOffset.
	OffsetEnds(ctx Context) (p0, p1 Point2D)
	// Normals returns unit normals at the start and end, pointing to the
	// side a positive Context.Side offsets toward.
	Normals() (n0, n1 Point2D)
	// Tangents returns unit tangents in the direction of travel at the
	// start and end.
	Tangents() (t0, t1 Point2D)

	// Eval appends to xs the x coordinates where the offset primitive
	// crosses the horizontal line at y. It reports false when y lies
	// outside the primitive's y-range.
	Eval(ctx Context, y float64, xs []float64) ([]float64, bool)
	// Length is the length of the raw geometry.
	Length() float64
	// AABB is the bounding box of the offset geometry.
	AABB(ctx Context) Rect

	// Duplicate returns an independent copy.
	Duplicate() Primitive
	// Scale scales the raw geometry about the origin.
	Scale(factor float64)
	// FlipDirection reverses the direction of travel.
	FlipDirection()

	isPrimitive()
}

// Compile-time interface checks.
var (
	_ Primitive = (*Line)(nil)
	_ Primitive = (*Arc)(nil)
)
