package path

import (
	"context"
	"log/slog"
	"math"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/logging"
)

// TrimOptions tunes PushOffset.
type TrimOptions struct {
	// PinUnmatchedEnd keeps an arc's end point in place when its start was
	// trimmed but nothing meets its end. When false the arc keeps its sweep
	// and the end slides with the start.
	PinUnmatchedEnd bool
}

// DefaultTrimOptions returns the options PushOffset is normally run with.
func DefaultTrimOptions() TrimOptions {
	return TrimOptions{PinUnmatchedEnd: true}
}

// PushOffset bakes the ring's offset context into its geometry and trims
// every primitive against its neighbours so that consecutive offset
// primitives meet where they cross. The input ring is not modified.
//
// Each endpoint is matched against the adjacent primitive first and the
// one beyond it second. Among several crossings the one nearest the
// original endpoint wins. Endpoints with no crossing stay where the offset
// put them; BridgeGaps closes what remains open.
//
// The returned ring has a neutral context carrying the original side and
// depth, so its raw geometry is final.
func PushOffset(r *Ring, opts TrimOptions) *Ring {
	out := r.Duplicate()
	for i, p := range out.Items {
		out.Items[i] = geom.WithOffset(p, r.Context).Primitive()
	}
	out.Context = r.Context.Neutral()
	if out.Len() < 2 {
		return out
	}

	// All intersections are taken against the untrimmed offset geometry.
	ref := out.Duplicate()
	for i := range out.Items {
		start, startOK := trimHit(ref, i, false)
		end, endOK := trimHit(ref, i, true)
		switch p := out.Items[i].(type) {
		case *geom.Line:
			if startOK {
				p.P0 = start
			}
			if endOK {
				p.P1 = end
			}
		case *geom.Arc:
			trimArc(p, start, startOK, end, endOK, opts)
		}
	}
	return out
}

// trimHit intersects ref item i with its neighbours on one side and returns
// the crossing nearest the matching endpoint of i.
func trimHit(ref *Ring, i int, atEnd bool) (geom.Point2D, bool) {
	step := ref.Prev
	if atEnd {
		step = ref.Next
	}
	p0, p1 := ref.Items[i].Ends()
	target := p0
	if atEnd {
		target = p1
	}

	j := i
	for level := 0; level < 2; level++ {
		j = step(j)
		if j < 0 || j == i {
			break
		}
		hits, ok := geom.Intersect(ref.Items[i], ref.Items[j], ref.Context)
		if ok {
			return nearest(target, hits), true
		}
		if logger := logging.Logger(); logger.Enabled(context.Background(), slog.LevelDebug) {
			a := geom.WithOffset(ref.Items[i], ref.Context)
			b := geom.WithOffset(ref.Items[j], ref.Context)
			logger.Debug("trim miss",
				"chain", ref.ID, "index", i, "neighbour", j, "end", atEnd,
				"concentric", a.Kind == geom.KindArc && b.Kind == geom.KindArc && geom.Concentric(a, b))
		}
	}
	return geom.Point2D{}, false
}

func nearest(target geom.Point2D, pts []geom.Point2D) geom.Point2D {
	best := pts[0]
	bestDist := target.Distance(best)
	for _, p := range pts[1:] {
		if d := target.Distance(p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// trimArc moves an arc's start and end onto the given points, keeping its
// center, radius and direction of travel.
func trimArc(a *geom.Arc, start geom.Point2D, startOK bool, end geom.Point2D, endOK bool, opts TrimOptions) {
	center := a.Center()
	oldStart := a.StartAngle
	oldSweep := a.Sweep

	if startOK {
		a.StartAngle = start.Sub(center).Angle()
		a.Pos = start
	}
	switch {
	case endOK:
		a.Sweep = directedSweep(a.StartAngle, end.Sub(center).Angle(), oldSweep)
	case startOK && opts.PinUnmatchedEnd:
		a.Sweep = oldSweep - signedDelta(oldStart, a.StartAngle)
	}
}

// directedSweep returns the sweep from start to end travelling in the
// direction of like. Coincident angles give a full turn only when like was
// more than a half turn.
func directedSweep(start, end, like float64) float64 {
	var d float64
	if like >= 0 {
		d = geom.NormalizeAngle(end - start)
	} else {
		d = geom.NormalizeAngle(start - end)
	}
	switch {
	case d < geom.AngularPrecision && math.Abs(like) > 180:
		d = 360
	case d > 360-geom.AngularPrecision && math.Abs(like) <= 180:
		d = 0
	}
	if like < 0 {
		return -d
	}
	return d
}

// signedDelta is the smallest signed rotation from a to b, in (-180, 180].
func signedDelta(a, b float64) float64 {
	d := geom.NormalizeAngle(b - a)
	if d > 180 {
		d -= 360
	}
	return d
}
