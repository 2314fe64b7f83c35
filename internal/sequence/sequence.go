// Package sequence picks the order in which toolpath plans are cut. Closed
// chains lying inside another closed chain go first, so a part is never cut
// free before its holes; within that constraint the rapid travel between
// chains is kept short.
package sequence

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

// Strategy selects how plans are ordered.
type Strategy int

const (
	StrategyDrawing Strategy = iota // Keep the input order
	StrategyNearest                 // Greedy nearest feasible chain
	StrategyGenetic                 // Genetic search seeded with the greedy order
)

func (s Strategy) String() string {
	switch s {
	case StrategyNearest:
		return "nearest"
	case StrategyGenetic:
		return "genetic"
	default:
		return "drawing"
	}
}

// ParseStrategy maps a strategy name, case-insensitively, to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "drawing", "none", "":
		return StrategyDrawing, nil
	case "nearest", "greedy":
		return StrategyNearest, nil
	case "genetic", "ga":
		return StrategyGenetic, nil
	}
	return StrategyDrawing, fmt.Errorf("unknown order strategy %q", name)
}

// Result describes one ordering.
type Result struct {
	Strategy   Strategy
	Order      []int   // Indices into the input plans
	Rapid      float64 // XY travel between chains, from the origin
	Violations int     // Chains cut after a chain enclosing them
}

// problem holds what the cost of an ordering depends on.
type problem struct {
	starts []geom.Point2D
	ends   []geom.Point2D
	// before[i] lists the plans that must be cut before plan i
	before [][]int
}

func newProblem(plans []*toolpath.Plan) *problem {
	n := len(plans)
	p := &problem{
		starts: make([]geom.Point2D, n),
		ends:   make([]geom.Point2D, n),
		before: make([][]int, n),
	}
	boxes := make([]geom.Rect, n)
	for i, plan := range plans {
		p.starts[i], p.ends[i] = endpoints(plan)
		boxes[i] = plan.Bounds()
	}

	for outer := range plans {
		if !plans[outer].Closed || boxes[outer].Empty() {
			continue
		}
		for inner := range plans {
			if inner != outer && encloses(boxes[outer], boxes[inner]) {
				p.before[outer] = append(p.before[outer], inner)
			}
		}
	}
	return p
}

// encloses reports whether inner fits in outer and is strictly smaller, so
// two chains never have to precede each other.
func encloses(outer, inner geom.Rect) bool {
	if inner.Empty() || !outer.Contains(inner.Min) || !outer.Contains(inner.Max) {
		return false
	}
	return inner.Width()*inner.Height() < outer.Width()*outer.Height()-geom.Precision
}

// endpoints returns where the cutter enters and leaves a plan.
func endpoints(plan *toolpath.Plan) (geom.Point2D, geom.Point2D) {
	moves := plan.Moves()
	if len(moves) == 0 {
		box := plan.Bounds()
		if box.Empty() {
			return geom.Point2D{}, geom.Point2D{}
		}
		return box.Min, box.Min
	}
	first, last := moves[0], moves[len(moves)-1]
	return geom.Pt(first.X, first.Y), geom.Pt(last.X, last.Y)
}

// cost walks an ordering from the origin.
func (p *problem) cost(order []int) (violations int, rapid float64) {
	done := make([]bool, len(order))
	var cur geom.Point2D
	for _, i := range order {
		rapid += cur.Distance(p.starts[i])
		cur = p.ends[i]
		for _, j := range p.before[i] {
			if !done[j] {
				violations++
			}
		}
		done[i] = true
	}
	return violations, rapid
}

// ready reports whether every plan required before i is done.
func (p *problem) ready(i int, done []bool) bool {
	for _, j := range p.before[i] {
		if !done[j] {
			return false
		}
	}
	return true
}

// nearestOrder repeatedly takes the closest plan whose enclosed plans are
// all cut. A cycle in the constraints cannot occur because enclosure is
// strict; the fallback keeps the loop total anyway.
func (p *problem) nearestOrder() []int {
	n := len(p.starts)
	done := make([]bool, n)
	order := make([]int, 0, n)
	var cur geom.Point2D
	for len(order) < n {
		best, bestDist := -1, math.Inf(1)
		fallback := -1
		for i := 0; i < n; i++ {
			if done[i] {
				continue
			}
			if fallback < 0 {
				fallback = i
			}
			if !p.ready(i, done) {
				continue
			}
			if d := cur.Distance(p.starts[i]); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			best = fallback
		}
		done[best] = true
		order = append(order, best)
		cur = p.ends[best]
	}
	return order
}

func (p *problem) result(s Strategy, order []int) Result {
	v, rapid := p.cost(order)
	return Result{Strategy: s, Order: order, Rapid: rapid, Violations: v}
}

// Solve orders plans with the given strategy. The genetic search is seeded
// so equal input gives equal output.
func Solve(plans []*toolpath.Plan, s Strategy, seed int64) Result {
	p := newProblem(plans)
	switch s {
	case StrategyNearest:
		return p.result(s, p.nearestOrder())
	case StrategyGenetic:
		ga := newGeneticSearch(p, ScaledGeneticConfig(len(plans)), seed)
		return p.result(s, ga.run())
	default:
		order := make([]int, len(plans))
		for i := range order {
			order[i] = i
		}
		return p.result(s, order)
	}
}

// Apply returns plans rearranged into the order of r.
func Apply(plans []*toolpath.Plan, r Result) []*toolpath.Plan {
	out := make([]*toolpath.Plan, len(r.Order))
	for i, idx := range r.Order {
		out[i] = plans[idx]
	}
	return out
}
