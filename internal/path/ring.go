// Package path holds ordered chains of primitives and the whole-chain
// algorithms that run on them: endpoint ordering, push-offset trimming and
// transition arcs at convex corners.
package path

import (
	"math"

	"github.com/google/uuid"

	"github.com/piwi3910/SlabCAM/internal/geom"
)

// Ring is an ordered chain of primitives sharing one offset context.
// Closed rings wrap around: the item after the last is the first.
type Ring struct {
	ID      string           `json:"id"`
	Items   []geom.Primitive `json:"-"`
	Context geom.Context     `json:"context"`
	Closed  bool             `json:"closed"`
}

// NewID returns a short random chain identifier.
func NewID() string {
	return uuid.New().String()[:8]
}

// New builds an open ring from items in the given order.
func New(ctx geom.Context, items ...geom.Primitive) *Ring {
	return &Ring{
		ID:      NewID(),
		Items:   append([]geom.Primitive(nil), items...),
		Context: ctx,
	}
}

func (r *Ring) Len() int {
	return len(r.Items)
}

func (r *Ring) At(i int) geom.Primitive {
	return r.Items[i]
}

// Prev returns the index before i, or -1 at the start of an open ring.
func (r *Ring) Prev(i int) int {
	if i > 0 {
		return i - 1
	}
	if r.Closed && len(r.Items) > 0 {
		return len(r.Items) - 1
	}
	return -1
}

// Next returns the index after i, or -1 at the end of an open ring.
func (r *Ring) Next(i int) int {
	if i < len(r.Items)-1 {
		return i + 1
	}
	if r.Closed && len(r.Items) > 0 {
		return 0
	}
	return -1
}

// Insert places p before index i. Inserting at Len appends.
func (r *Ring) Insert(i int, p geom.Primitive) {
	r.Items = append(r.Items, nil)
	copy(r.Items[i+1:], r.Items[i:])
	r.Items[i] = p
}

// Append adds primitives at the end of the ring.
func (r *Ring) Append(ps ...geom.Primitive) {
	r.Items = append(r.Items, ps...)
}

// Splice inserts a run of primitives directly after index i.
func (r *Ring) Splice(i int, ps ...geom.Primitive) {
	tail := append([]geom.Primitive(nil), r.Items[i+1:]...)
	r.Items = append(append(r.Items[:i+1], ps...), tail...)
}

// Remove unlinks and returns the primitive at i.
func (r *Ring) Remove(i int) geom.Primitive {
	p := r.Items[i]
	r.Items = append(r.Items[:i], r.Items[i+1:]...)
	return p
}

// DuplicateRange deep-copies items [start, end) into an independent ring
// with its own copy of the context. Later changes to either ring never
// reach the other. A partial range is always open.
func (r *Ring) DuplicateRange(start, end int) *Ring {
	out := &Ring{
		ID:      r.ID,
		Items:   make([]geom.Primitive, 0, end-start),
		Context: r.Context,
		Closed:  r.Closed && start == 0 && end == len(r.Items),
	}
	for _, p := range r.Items[start:end] {
		out.Items = append(out.Items, p.Duplicate())
	}
	return out
}

// Duplicate deep-copies the whole ring.
func (r *Ring) Duplicate() *Ring {
	return r.DuplicateRange(0, len(r.Items))
}

// DetectClosed reports whether the start of the first item meets the end
// of the last one. Placement is rigid, so raw endpoints decide.
func (r *Ring) DetectClosed() bool {
	if len(r.Items) == 0 {
		return false
	}
	first, _ := r.Items[0].Ends()
	_, last := r.Items[len(r.Items)-1].Ends()
	return geom.PointsCoincide(first, last)
}

// IsContinuous walks the ring and reports whether every raw item ends
// where the next one starts, including the closing joint of a closed ring.
// Offset geometry only meets after PushOffset and BridgeGaps.
func (r *Ring) IsContinuous() bool {
	for i := range r.Items {
		j := r.Next(i)
		if j < 0 {
			break
		}
		_, end := r.Items[i].Ends()
		start, _ := r.Items[j].Ends()
		if !geom.PointsCoincide(end, start) {
			return false
		}
	}
	return true
}

// Flip reverses the direction of travel of the whole ring.
func (r *Ring) Flip() {
	for i, j := 0, len(r.Items)-1; i < j; i, j = i+1, j-1 {
		r.Items[i], r.Items[j] = r.Items[j], r.Items[i]
	}
	for _, p := range r.Items {
		p.FlipDirection()
	}
}

// AABB is the bounding box of the offset geometry.
func (r *Ring) AABB() geom.Rect {
	return r.RangeAABB(0, len(r.Items))
}

// RangeAABB is the bounding box of the offset geometry of items [start, end).
func (r *Ring) RangeAABB(start, end int) geom.Rect {
	box := geom.EmptyRect()
	for _, p := range r.Items[start:end] {
		box = box.Union(p.AABB(r.Context))
	}
	return box
}

// Length sums the raw lengths of every item.
func (r *Ring) Length() float64 {
	var total float64
	for _, p := range r.Items {
		total += p.Length()
	}
	return total
}

// Scale scales every item's raw geometry.
func (r *Ring) Scale(factor float64) {
	for _, p := range r.Items {
		p.Scale(factor)
	}
}

// SignedArea returns the area enclosed by the raw chain, positive for
// counter-clockwise travel. Arcs contribute their exact segment area.
func (r *Ring) SignedArea() float64 {
	var area float64
	for _, p := range r.Items {
		p0, p1 := p.Ends()
		area += p0.Cross(p1) / 2
		if a, ok := p.(*geom.Arc); ok {
			theta := geom.Deg2Rad(a.Sweep)
			area += a.Radius * a.Radius * (theta - math.Sin(theta)) / 2
		}
	}
	return area
}
