package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/logging"
	"github.com/piwi3910/SlabCAM/internal/path"
)

// SnapTolerance is how far apart loose LINE and ARC endpoints may be and
// still be joined into one chain. Drawings routinely carry gaps far above
// the kernel precision.
const SnapTolerance = 0.01

// DrawingResult holds the chains found in a drawing. Closed chains come
// first, largest enclosed area first; open chains follow in drawing order.
type DrawingResult struct {
	Chains   []*path.Ring
	Errors   []string
	Warnings []string
}

// ImportDXF reads a DXF file into chains. Every LWPOLYLINE and CIRCLE is a
// chain of its own; loose LINE and ARC entities are snapped together and
// chained by matching endpoints.
func ImportDXF(filename string) DrawingResult {
	drawing, err := dxf.Open(filename)
	if err != nil {
		return DrawingResult{Errors: []string{fmt.Sprintf("Cannot open DXF file: %v", err)}}
	}
	return importEntities(drawing.Entities())
}

func importEntities(entities []entity.Entity) DrawingResult {
	result := DrawingResult{}
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var loose []geom.Primitive
	skipped := map[string]int{}
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			items := polylinePrimitives(e.Vertices, e.Bulges, e.Closed)
			if len(items) == 0 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			r := path.New(geom.Context{}, items...)
			r.Closed = r.DetectClosed()
			result.Chains = append(result.Chains, r)

		case *entity.Circle:
			if e.Radius < geom.Precision {
				result.Warnings = append(result.Warnings, "Skipped zero-radius CIRCLE")
				continue
			}
			r := path.New(geom.Context{}, geom.NewArcCenter(geom.Pt(e.Center[0], e.Center[1]), e.Radius, 0, 360))
			r.Closed = true
			result.Chains = append(result.Chains, r)

		case *entity.Arc:
			sweep := geom.NormalizeAngle(e.Angle[1] - e.Angle[0])
			if sweep < geom.AngularPrecision {
				sweep = 360
			}
			if e.Circle.Radius < geom.Precision {
				result.Warnings = append(result.Warnings, "Skipped zero-radius ARC")
				continue
			}
			loose = append(loose, geom.NewArcCenter(
				geom.Pt(e.Circle.Center[0], e.Circle.Center[1]), e.Circle.Radius, e.Angle[0], sweep))

		case *entity.Line:
			l := geom.NewLine(e.Start[0], e.Start[1], e.End[0], e.End[1])
			if l.Length() < geom.Precision {
				result.Warnings = append(result.Warnings, "Skipped zero-length LINE")
				continue
			}
			loose = append(loose, l)

		default:
			skipped[fmt.Sprintf("%T", ent)]++
		}
	}
	for kind, n := range skipped {
		logging.Logger().Debug("unsupported DXF entities skipped", "type", kind, "count", n)
	}

	snapEndpoints(loose, SnapTolerance)
	for _, r := range path.OrderAll(loose, geom.Context{}) {
		result.Chains = append(result.Chains, r)
	}

	if len(result.Chains) == 0 {
		result.Errors = append(result.Errors, "No usable geometry found in DXF file")
		return result
	}

	sortChains(result.Chains)
	for i, r := range result.Chains {
		if !r.Closed {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Chain %d is open (%d primitives)", i+1, r.Len()))
		}
	}
	return result
}

// sortChains puts closed chains first, by enclosed area, largest first.
func sortChains(chains []*path.Ring) {
	sort.SliceStable(chains, func(i, j int) bool {
		a, b := chains[i], chains[j]
		if a.Closed != b.Closed {
			return a.Closed
		}
		if !a.Closed {
			return false
		}
		return math.Abs(a.SignedArea()) > math.Abs(b.SignedArea())
	})
}

// snapEndpoints closes small drawing gaps so that loose primitives chain.
// Each arc is first moved whole, once and by at most tolerance, so that its
// start or else its end meets an arc end seen earlier; its shape never
// changes. Line endpoints then snap onto any nearby endpoint seen earlier.
func snapEndpoints(items []geom.Primitive, tolerance float64) {
	var anchors []geom.Point2D
	near := func(pt geom.Point2D) (geom.Point2D, bool) {
		for _, a := range anchors {
			if pt.Distance(a) <= tolerance {
				return a, true
			}
		}
		return pt, false
	}

	for _, p := range items {
		a, ok := p.(*geom.Arc)
		if !ok {
			continue
		}
		p0, p1 := a.Ends()
		if to, ok := near(p0); ok {
			a.Pos = to
		} else if to, ok := near(p1); ok {
			a.Pos = a.Pos.Add(to.Sub(p1))
		}
		p0, p1 = a.Ends()
		anchors = append(anchors, p0, p1)
	}

	snap := func(pt geom.Point2D) geom.Point2D {
		if to, ok := near(pt); ok {
			return to
		}
		anchors = append(anchors, pt)
		return pt
	}
	for _, p := range items {
		if l, ok := p.(*geom.Line); ok {
			l.SetEnds(snap(l.P0), snap(l.P1))
		}
	}
}

// polylinePrimitives converts LWPOLYLINE vertices to lines and arcs. A
// vertex's bulge shapes the segment that leaves it; the bulge is the tangent
// of a quarter of the included angle, positive for counter-clockwise.
func polylinePrimitives(vertices [][]float64, bulges []float64, closed bool) []geom.Primitive {
	if len(vertices) < 2 {
		return nil
	}

	n := len(vertices) - 1
	if closed {
		n = len(vertices)
	}

	var items []geom.Primitive
	for i := 0; i < n; i++ {
		from := geom.Pt(vertices[i][0], vertices[i][1])
		next := vertices[(i+1)%len(vertices)]
		to := geom.Pt(next[0], next[1])
		if geom.PointsCoincide(from, to) {
			continue
		}

		bulge := 0.0
		if i < len(bulges) {
			bulge = bulges[i]
		}
		if math.Abs(bulge) > 1e-9 {
			items = append(items, bulgeArc(from, to, bulge))
		} else {
			items = append(items, geom.NewLine(from.X, from.Y, to.X, to.Y))
		}
	}
	return items
}

// bulgeArc returns the arc from p1 to p2 with the given DXF bulge.
func bulgeArc(p1, p2 geom.Point2D, bulge float64) *geom.Arc {
	chord := p2.Sub(p1)
	included := 4 * math.Atan(math.Abs(bulge))
	radius := chord.Length() / (2 * math.Sin(included/2))

	// Center lies on the chord bisector, left of the chord for a
	// counter-clockwise arc shorter than a half circle.
	left := geom.Pt(-chord.Y, chord.X).Normalize()
	h := radius * math.Cos(included/2)
	if bulge < 0 {
		h = -h
	}
	center := p1.Add(chord.Mul(0.5)).Add(left.Mul(h))

	sweep := geom.Rad2Deg(included)
	if bulge < 0 {
		sweep = -sweep
	}
	return geom.NewArcCenter(center, radius, p1.Sub(center).Angle(), sweep)
}
