package path

import (
	"math"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/logging"
)

// TransitionArc builds the arc that rolls the tool around the outside of a
// corner, from the end of first to the start of second. Both primitives are
// taken as final geometry, as left by PushOffset.
//
// The arc starts at first's end point and leaves along side times first's
// end normal. Its sweep is the angle between the two side-scaled normals,
// signed by their turn, and its radius places its end on second's start:
//
//	r = sqrt((d/2)^2 * (1 + tan^2(90 - theta/2)))
//
// with d the gap length and theta the normal angle in degrees. It reports
// false when the ends already meet, when the normals agree, or when the
// corner turns away from the offset side so no arc belongs there.
func TransitionArc(first, second geom.Primitive, side float64) (*geom.Arc, bool) {
	_, from := first.Ends()
	to, _ := second.Ends()
	d := from.Distance(to)
	if d < geom.Precision || side == 0 {
		return nil, false
	}

	_, n0 := first.Normals()
	n1, _ := second.Normals()
	if side < 0 {
		n0, n1 = n0.Mul(-1), n1.Mul(-1)
	}

	cos := math.Max(-1, math.Min(1, n0.Dot(n1)))
	theta := geom.Rad2Deg(math.Acos(cos))
	if theta < geom.AngularPrecision {
		return nil, false
	}

	turn := n0.Cross(n1)
	if math.Abs(turn) < geom.Precision {
		// Reversal: turn toward the offset side.
		turn = side
	}
	if turn*side < 0 {
		return nil, false
	}

	half := geom.Deg2Rad(90 - theta/2)
	t := math.Tan(half)
	r := math.Sqrt((d / 2) * (d / 2) * (1 + t*t))

	sweep := theta
	if turn < 0 {
		sweep = -theta
	}
	return &geom.Arc{Pos: from, Radius: r, StartAngle: n0.Angle(), Sweep: sweep}, true
}

// InsertTransition splices a transition arc after item i when the junction
// with the next item is an open convex corner. It reports whether an arc
// was inserted.
func InsertTransition(r *Ring, i int) bool {
	j := r.Next(i)
	if j < 0 || j == i {
		return false
	}
	arc, ok := TransitionArc(r.Items[i], r.Items[j], r.Context.Side)
	if !ok {
		return false
	}
	r.Splice(i, arc)
	return true
}

// BridgeGaps walks a pushed ring and inserts a transition arc at every
// open convex corner. It returns the number of arcs inserted and logs
// junctions left open because they turn the other way.
func BridgeGaps(r *Ring) int {
	inserted := 0
	for i := 0; i < r.Len(); i++ {
		j := r.Next(i)
		if j < 0 {
			break
		}
		if InsertTransition(r, i) {
			inserted++
			i++
			continue
		}
		_, end := r.Items[i].Ends()
		start, _ := r.Items[j].Ends()
		if !geom.PointsCoincide(end, start) {
			logging.Logger().Debug("junction left open",
				"chain", r.ID, "index", i, "gap", end.Distance(start))
		}
	}
	return inserted
}
