package path

import (
	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/logging"
)

// OrderList chains an unordered bag of primitives into a ring by matching
// endpoints. The first primitive anchors the ring; free primitives are
// attached at the tail or the head, flipped when they point the wrong way,
// until a full pass attaches nothing or the ring's ends meet. The ring is
// marked closed when its ends meet.
//
// Primitives that could not be connected are returned rather than dropped.
// The input primitives are moved into the ring, not copied.
func OrderList(bag []geom.Primitive, ctx geom.Context) (*Ring, []geom.Primitive) {
	r, free := orderList(bag, ctx)
	if len(free) > 0 {
		logging.Logger().Warn("unconnected primitives left out of chain",
			"chain", r.ID, "chained", r.Len(), "unconnected", len(free))
	}
	return r, free
}

func orderList(bag []geom.Primitive, ctx geom.Context) (*Ring, []geom.Primitive) {
	r := New(ctx)
	if len(bag) == 0 {
		return r, nil
	}

	r.Append(bag[0])
	free := append([]geom.Primitive(nil), bag[1:]...)

	for changed := true; changed && len(free) > 0; {
		changed = false
		remaining := free[:0]
		for _, p := range free {
			if !closed(r) && attach(r, p) {
				changed = true
				continue
			}
			remaining = append(remaining, p)
		}
		free = remaining
	}

	r.Closed = r.DetectClosed()
	if len(free) == 0 {
		return r, nil
	}
	return r, free
}

// closed reports whether the chain built so far already meets itself.
// Nothing more may be attached to a closed chain; what is left over forms
// chains of its own.
func closed(r *Ring) bool {
	return r.DetectClosed()
}

// attach links p to the tail or head of r when one of its endpoints
// matches, flipping it as needed.
func attach(r *Ring, p geom.Primitive) bool {
	head, _ := r.Items[0].Ends()
	_, tail := r.Items[r.Len()-1].Ends()
	p0, p1 := p.Ends()

	switch {
	case geom.PointsCoincide(tail, p0):
		r.Append(p)
	case geom.PointsCoincide(tail, p1):
		p.FlipDirection()
		r.Append(p)
	case geom.PointsCoincide(head, p1):
		r.Insert(0, p)
	case geom.PointsCoincide(head, p0):
		p.FlipDirection()
		r.Insert(0, p)
	default:
		return false
	}
	return true
}

// OrderAll repeatedly chains the bag until every primitive belongs to a
// ring. The rings come back in the order their anchors appeared.
func OrderAll(bag []geom.Primitive, ctx geom.Context) []*Ring {
	var rings []*Ring
	for len(bag) > 0 {
		r, rest := orderList(bag, ctx)
		rings = append(rings, r)
		bag = rest
	}
	return rings
}
