// Package pocket clears the area enclosed by a finished contour with
// horizontal zig-zag rows.
package pocket

import (
	"errors"
	"sort"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/logging"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
)

// ErrGridMismatch is returned by Subtract when the two pockets were not
// built on the same rows.
var ErrGridMismatch = errors.New("pocket: rows do not share start and resolution")

// nudge is the share of the tool diameter each span end is pulled inward,
// leaving stock for the contour pass.
const nudge = 0.1

// Span is one clearable interval of a row, X0 < X1.
type Span struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
}

func (s Span) Width() float64 {
	return s.X1 - s.X0
}

// Row holds the spans of one scanline, sorted by X.
type Row struct {
	Y     float64 `json:"y"`
	Spans []Span  `json:"spans"`
}

// Pocket is a stack of rows spaced Resolution apart from StartY upward.
// Row k sits at StartY + k*Resolution, so two pockets built on the same
// grid can be compared row by row.
type Pocket struct {
	StartY       float64 `json:"start_y"`
	Resolution   float64 `json:"resolution"`
	ToolDiameter float64 `json:"tool_diameter"`
	Rows         []Row   `json:"rows"`
}

// Prep rasterizes items [start, end) of r. Each row collects the X
// crossings of every item, pairs them under the even-odd rule, drops pairs
// narrower than the tool and pulls the survivors inward by a tenth of the
// tool diameter on each side.
//
// r is normally the output of path.PushOffset, so the crossings already
// describe where the tool center may go.
func Prep(r *path.Ring, start, end int, resolution, toolDiameter float64) *Pocket {
	box := r.RangeAABB(start, end)
	p := &Pocket{
		StartY:       box.Min.Y,
		Resolution:   resolution,
		ToolDiameter: toolDiameter,
	}
	if box.Empty() || resolution <= 0 {
		return p
	}

	var xs []float64
	for k := 0; ; k++ {
		y := p.StartY + float64(k)*resolution
		if y > box.Max.Y+geom.Precision {
			break
		}
		xs = xs[:0]
		for i := start; i < end; i++ {
			xs, _ = r.Items[i].Eval(r.Context, y, xs)
		}
		p.Rows = append(p.Rows, Row{Y: y, Spans: spans(xs, toolDiameter)})
	}

	logging.Logger().Debug("pocket prepared",
		"chain", r.ID, "rows", len(p.Rows), "spans", p.Len())
	return p
}

// spans turns raw crossings into clearable spans.
func spans(xs []float64, toolDiameter float64) []Span {
	sort.Float64s(xs)
	uniq := xs[:0]
	for _, x := range xs {
		if len(uniq) > 0 && x-uniq[len(uniq)-1] < geom.Precision {
			continue
		}
		uniq = append(uniq, x)
	}

	var out []Span
	inset := toolDiameter * nudge
	for i := 0; i+1 < len(uniq); i += 2 {
		s := Span{X0: uniq[i], X1: uniq[i+1]}
		if s.Width() < toolDiameter {
			continue
		}
		s.X0 += inset
		s.X1 -= inset
		out = append(out, s)
	}
	return out
}

// Len counts the spans over all rows.
func (p *Pocket) Len() int {
	n := 0
	for _, row := range p.Rows {
		n += len(row.Spans)
	}
	return n
}

// Make emits the clearing passes at depth in stock whose surface is at top.
// Rows alternate direction. Each span retracts to retractZ, rapids over its
// start, drops quickly to lastDepth when an earlier layer already cleared
// below top, then feeds down to depth and across.
func (p *Pocket) Make(top, depth, lastDepth, retractZ float64, tool model.Tool) []model.Move {
	var moves []model.Move
	var cur geom.Point2D
	started := false
	reverse := false

	for _, row := range p.Rows {
		if len(row.Spans) == 0 {
			continue
		}
		for n := range row.Spans {
			s := row.Spans[n]
			from, to := s.X0, s.X1
			if reverse {
				s = row.Spans[len(row.Spans)-1-n]
				from, to = s.X1, s.X0
			}

			if started {
				moves = append(moves, model.Move{Kind: model.MoveRapid, X: cur.X, Y: cur.Y, Z: retractZ})
			}
			moves = append(moves, model.Move{Kind: model.MoveRapid, X: from, Y: row.Y, Z: retractZ})
			if lastDepth < top && lastDepth > depth {
				moves = append(moves, model.Move{Kind: model.MoveRapid, X: from, Y: row.Y, Z: lastDepth})
			}
			moves = append(moves,
				model.Move{Kind: model.MoveFeed, X: from, Y: row.Y, Z: depth, Feed: tool.PlungeRate},
				model.Move{Kind: model.MoveFeed, X: to, Y: row.Y, Z: depth, Feed: tool.FeedRate},
			)
			cur = geom.Pt(to, row.Y)
			started = true
		}
		reverse = !reverse
	}
	if started {
		moves = append(moves, model.Move{Kind: model.MoveRapid, X: cur.X, Y: cur.Y, Z: retractZ})
	}
	return moves
}

// Subtract removes b's spans from a's, row by row. Both pockets must share
// StartY and Resolution.
func Subtract(a, b *Pocket) error {
	if !geom.Near(a.StartY, b.StartY) || !geom.Near(a.Resolution, b.Resolution) {
		return ErrGridMismatch
	}
	for k := range a.Rows {
		if k >= len(b.Rows) {
			break
		}
		for _, cut := range b.Rows[k].Spans {
			a.Rows[k].Spans = clip(a.Rows[k].Spans, cut)
		}
	}
	return nil
}

// clip removes cut from every span it touches.
func clip(spans []Span, cut Span) []Span {
	out := make([]Span, 0, len(spans)+1)
	for _, s := range spans {
		switch {
		case cut.X1 <= s.X0 || cut.X0 >= s.X1:
			out = append(out, s)
		case cut.X0 <= s.X0 && cut.X1 >= s.X1:
			// covered
		case cut.X0 > s.X0 && cut.X1 < s.X1:
			out = append(out, Span{X0: s.X0, X1: cut.X0}, Span{X0: cut.X1, X1: s.X1})
		case cut.X0 > s.X0:
			out = append(out, Span{X0: s.X0, X1: cut.X0})
		default:
			out = append(out, Span{X0: cut.X1, X1: s.X1})
		}
	}
	return out
}
