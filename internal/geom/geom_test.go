package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func assertPoint(t *testing.T, want, got Point2D, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-7, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, 1e-7, msgAndArgs...)
}

func TestAngleWithinArc(t *testing.T) {
	tests := []struct {
		name               string
		start, sweep, test float64
		want               bool
	}{
		{"inside ccw", 0, 90, 45, true},
		{"outside ccw", 0, 90, 135, false},
		{"inside cw", 90, -90, 45, true},
		{"outside cw", 90, -90, 180, false},
		{"wraps past 360", 350, 20, 5, true},
		{"wraps past 360 miss", 350, 20, 20, false},
		{"negative start", -10, 20, 355, true},
		{"cw across zero", 10, -20, 355, true},
		{"start boundary", 0, 90, 0, true},
		{"end boundary", 0, 90, 90, true},
		{"within angular tolerance", 0, 90, 90.0005, true},
		{"beyond angular tolerance", 0, 90, 90.01, false},
		{"just below 360 at span start", 0, 90, 359.9995, true},
		{"full circle", 123, 360, 17, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AngleWithinArc(tc.start, tc.sweep, tc.test))
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 350.0, NormalizeAngle(-10), delta)
	assert.InDelta(t, 0.0, NormalizeAngle(360), delta)
	assert.InDelta(t, 90.0, NormalizeAngle(810), delta)
}

func TestPointsCoincide(t *testing.T) {
	assert.True(t, PointsCoincide(Pt(1, 1), Pt(1+5e-6, 1-5e-6)))
	assert.False(t, PointsCoincide(Pt(1, 1), Pt(1+2e-5, 1)))
}

func TestLineQueries(t *testing.T) {
	l := NewLine(0, 0, 3, 4)
	assert.InDelta(t, 5.0, l.Length(), delta)

	n0, n1 := l.Normals()
	assertPoint(t, Pt(0.8, -0.6), n0)
	assert.Equal(t, n0, n1)

	t0, _ := l.Tangents()
	assertPoint(t, Pt(0.6, 0.8), t0)

	l.FlipDirection()
	p0, p1 := l.Ends()
	assert.Equal(t, Pt(3, 4), p0)
	assert.Equal(t, Pt(0, 0), p1)

	l.Scale(2)
	p0, p1 = l.Ends()
	assert.Equal(t, Pt(6, 8), p0)
	assert.Equal(t, Pt(0, 0), p1)
}

func TestLineOffsetRightOfTravel(t *testing.T) {
	l := NewLine(0, 0, 10, 0)
	p0, p1 := l.OffsetEnds(Context{Side: 1, Tool: 2})
	assertPoint(t, Pt(0, -2), p0)
	assertPoint(t, Pt(10, -2), p1)

	p0, p1 = l.OffsetEnds(Context{Side: -1, Tool: 2, Eval: 0.5})
	assertPoint(t, Pt(0, 2.5), p0)
	assertPoint(t, Pt(10, 2.5), p1)
}

func TestLineOffsetSymmetry(t *testing.T) {
	lines := []*Line{
		NewLine(0, 0, 10, 0),
		NewLine(-3, 7, 4, -2),
		NewLine(1, 1, 1, 9),
	}
	for _, side := range []float64{1, -1} {
		ctx := Context{Side: side, Tool: 1.5, Eval: 0.25}
		inverse := ctx
		inverse.Side = -side
		for _, l := range lines {
			once := WithOffset(l, ctx).Primitive()
			back := WithOffset(once, inverse)
			assertPoint(t, l.P0, back.Origin)
			assertPoint(t, l.P1, back.End)
		}
	}
}

func TestOffsetPlacement(t *testing.T) {
	l := NewLine(1, 0, 2, 0)
	ctx := Context{Origin: Pt(10, 10), Rotation: 90}
	p0, p1 := l.OffsetEnds(ctx)
	assertPoint(t, Pt(10, 11), p0)
	assertPoint(t, Pt(10, 12), p1)

	a := NewArcCenter(Pt(0, 0), 1, 0, 90)
	o := WithOffset(a, ctx)
	assertPoint(t, Pt(10, 10), o.Center)
	assertPoint(t, Pt(10, 11), o.Origin)
	assertPoint(t, Pt(9, 10), o.End)
	assert.InDelta(t, 90.0, o.StartAngle, delta)
}

func TestArcOffsetRadius(t *testing.T) {
	ccw := NewArcCenter(Pt(0, 0), 5, 0, 90)
	cw := NewArcCenter(Pt(0, 0), 5, 90, -90)

	assert.InDelta(t, 6.0, WithOffset(ccw, Context{Side: 1, Tool: 1}).Radius, delta)
	assert.InDelta(t, 4.0, WithOffset(ccw, Context{Side: -1, Tool: 1}).Radius, delta)
	assert.InDelta(t, 4.0, WithOffset(cw, Context{Side: 1, Tool: 1}).Radius, delta)
	assert.InDelta(t, 6.0, WithOffset(cw, Context{Side: -1, Tool: 1}).Radius, delta)

	// radius clamps at zero and still produces a usable point
	o := WithOffset(ccw, Context{Side: -1, Tool: 8})
	assert.Equal(t, 0.0, o.Radius)
	assertPoint(t, Pt(0, 0), o.Origin)
	assertPoint(t, Pt(0, 0), o.End)
}

func TestArcQueries(t *testing.T) {
	a := NewArcCenter(Pt(1, 1), 2, 0, 90)
	assertPoint(t, Pt(1, 1), a.Center())
	assertPoint(t, Pt(1, 3), a.End())
	assert.InDelta(t, math.Pi, a.Length(), delta)

	n0, n1 := a.Normals()
	assertPoint(t, Pt(1, 0), n0)
	assertPoint(t, Pt(0, 1), n1)
	t0, t1 := a.Tangents()
	assertPoint(t, Pt(0, 1), t0)
	assertPoint(t, Pt(-1, 0), t1)

	cw := NewArcCenter(Pt(0, 0), 1, 90, -90)
	n0, _ = cw.Normals()
	assertPoint(t, Pt(0, -1), n0)
	t0, _ = cw.Tangents()
	assertPoint(t, Pt(1, 0), t0)
}

func TestArcFlipDirection(t *testing.T) {
	a := NewArcCenter(Pt(0, 0), 2, 30, 120)
	start, end := a.Ends()
	a.FlipDirection()
	p0, p1 := a.Ends()
	assertPoint(t, end, p0)
	assertPoint(t, start, p1)
	assert.InDelta(t, -120.0, a.Sweep, delta)
	assertPoint(t, Pt(0, 0), a.Center())
}

func TestArcScale(t *testing.T) {
	a := NewArcCenter(Pt(1, 0), 1, 0, 180)
	a.Scale(3)
	assert.InDelta(t, 3.0, a.Radius, delta)
	assertPoint(t, Pt(3, 0), a.Center())
	assert.InDelta(t, 180.0, a.Sweep, delta)
}

func TestArcAABB(t *testing.T) {
	quarter := NewArcCenter(Pt(0, 0), 1, 45, 90)
	box := quarter.AABB(Context{})
	s := math.Sqrt2 / 2
	assert.InDelta(t, -s, box.Min.X, 1e-9)
	assert.InDelta(t, s, box.Max.X, 1e-9)
	assert.InDelta(t, s, box.Min.Y, 1e-9)
	assert.InDelta(t, 1.0, box.Max.Y, 1e-9)

	full := NewArcCenter(Pt(0, 0), 1, 0, 360)
	box = full.AABB(Context{Side: 1, Tool: 1})
	assert.InDelta(t, -2.0, box.Min.X, 1e-9)
	assert.InDelta(t, 2.0, box.Max.Y, 1e-9)
}

func TestEval(t *testing.T) {
	circle := NewArcCenter(Pt(0, 0), 1, 0, 360)
	xs, ok := circle.Eval(Context{}, 0, nil)
	require.True(t, ok)
	require.Len(t, xs, 2)
	assert.InDelta(t, -1.0, xs[0], 1e-9)
	assert.InDelta(t, 1.0, xs[1], 1e-9)

	_, ok = circle.Eval(Context{}, 1.5, nil)
	assert.False(t, ok)

	upper := NewArcCenter(Pt(0, 0), 1, 0, 180)
	xs, ok = upper.Eval(Context{}, 0.5, nil)
	require.True(t, ok)
	assert.Len(t, xs, 2)

	l := NewLine(0, 0, 2, 4)
	xs, ok = l.Eval(Context{}, 2, nil)
	require.True(t, ok)
	require.Len(t, xs, 1)
	assert.InDelta(t, 1.0, xs[0], delta)

	_, ok = l.Eval(Context{}, 5, nil)
	assert.False(t, ok)

	// evaluated on the offset geometry
	xs, ok = l.Eval(Context{Origin: Pt(10, 0)}, 2, nil)
	require.True(t, ok)
	assert.InDelta(t, 11.0, xs[0], delta)
}

func TestIntersectLinesSharedEndpoint(t *testing.T) {
	a := NewLine(0, 0, 5, 5)
	b := NewLine(5, 5, 10, 0)
	pts, ok := Intersect(a, b, Context{})
	require.True(t, ok)
	require.Len(t, pts, 1)
	assertPoint(t, Pt(5, 5), pts[0])
}

func TestIntersectLinesMisses(t *testing.T) {
	_, ok := Intersect(NewLine(0, 0, 10, 0), NewLine(0, 1, 10, 1), Context{})
	assert.False(t, ok, "parallel lines")

	_, ok = Intersect(NewLine(0, 0, 1, 0), NewLine(5, -1, 5, 1), Context{})
	assert.False(t, ok, "crossing outside the first segment")

	pts, ok := Intersect(NewLine(0, 0, 10, 0), NewLine(5, -1, 5, 1), Context{})
	require.True(t, ok)
	assertPoint(t, Pt(5, 0), pts[0])
}

func TestIntersectLineArc(t *testing.T) {
	circle := NewArcCenter(Pt(0, 0), 1, 0, 360)
	pts, ok := Intersect(NewLine(-2, 0, 2, 0), circle, Context{})
	require.True(t, ok)
	assert.Len(t, pts, 2)

	pts, ok = Intersect(NewLine(-2, 1, 2, 1), circle, Context{})
	require.True(t, ok, "tangent line")
	require.Len(t, pts, 1)
	assertPoint(t, Pt(0, 1), pts[0])

	_, ok = Intersect(NewLine(-2, 1.5, 2, 1.5), circle, Context{})
	assert.False(t, ok)

	upper := NewArcCenter(Pt(0, 0), 1, 0, 180)
	pts, ok = Intersect(upper, NewLine(0, -2, 0, 2), Context{})
	require.True(t, ok)
	require.Len(t, pts, 1)
	assertPoint(t, Pt(0, 1), pts[0])

	_, ok = Intersect(NewLine(0, -2, 0, 0.5), upper, Context{})
	assert.False(t, ok, "hit lies outside the segment box")
}

func TestIntersectArcs(t *testing.T) {
	r := 1.5
	a := NewArcCenter(Pt(0, 0), r, 0, 360)
	b := NewArcCenter(Pt(2*r, 0), r, 0, 360)
	pts, ok := Intersect(a, b, Context{})
	require.True(t, ok)
	require.Len(t, pts, 1, "tangent circles meet once")
	assertPoint(t, Pt(r, 0), pts[0])

	far := NewArcCenter(Pt(2*r+0.1, 0), r, 0, 360)
	_, ok = Intersect(a, far, Context{})
	assert.False(t, ok)

	overlap := NewArcCenter(Pt(r, 0), r, 0, 360)
	pts, ok = Intersect(a, overlap, Context{})
	require.True(t, ok)
	assert.Len(t, pts, 2)

	// only the upper crossing lies on an upper half arc
	upper := NewArcCenter(Pt(r, 0), r, 0, 180)
	pts, ok = Intersect(a, upper, Context{})
	require.True(t, ok)
	require.Len(t, pts, 1)
	assert.Greater(t, pts[0].Y, 0.0)

	inner := NewArcCenter(Pt(0.1, 0), 0.5, 0, 360)
	_, ok = Intersect(a, inner, Context{})
	assert.False(t, ok, "nested circles")
}

func TestIntersectConcentricArcsMiss(t *testing.T) {
	a := NewArcCenter(Pt(0, 0), 1, 0, 90)
	b := NewArcCenter(Pt(0, 0), 1, 45, 90)
	oa, ob := WithOffset(a, Context{}), WithOffset(b, Context{})
	assert.True(t, Concentric(oa, ob))
	_, ok := IntersectArcs(oa, ob)
	assert.False(t, ok)
}

func TestRect(t *testing.T) {
	r := RectOf(Pt(1, 2), Pt(-1, 5))
	assert.Equal(t, Pt(-1, 2), r.Min)
	assert.Equal(t, Pt(1, 5), r.Max)
	assert.True(t, EmptyRect().Empty())
	assert.Equal(t, r, EmptyRect().Union(r))
	assert.True(t, r.Contains(Pt(1+5e-6, 5)))
	assert.InDelta(t, 2.0, r.Width(), delta)
	assert.InDelta(t, 3.0, r.Height(), delta)
}

func TestUnitHelpers(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Deg2Rad(90), delta)
	assert.InDelta(t, 180.0, Rad2Deg(math.Pi), delta)
	assert.InDelta(t, 5.0, Pt(3, 4).Length(), delta)
	assert.InDelta(t, 25.0, Pt(3, 4).LengthSquared(), delta)
}

func TestLineDuplicateFlipScale(t *testing.T) {
	l := NewLine(0, 0, 2, 0)
	c := l.Duplicate().(*Line)
	c.FlipDirection()
	c.Scale(2)
	assert.Equal(t, Pt(0, 0), l.P0, "the copy is independent")
	assert.Equal(t, Pt(4, 0), c.P0)
	assert.Equal(t, Pt(0, 0), c.P1)
}
