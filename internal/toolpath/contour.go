package toolpath

import (
	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
)

// ContourMoves follows a finished ring at depth z in stock whose surface is
// at top. The ring's raw geometry is taken as the tool center path, as left
// by path.PushOffset. Junctions that were left open are crossed with a
// straight feed. Retracts go to the absolute height retractZ.
func ContourMoves(r *path.Ring, top, z, lastDepth, retractZ float64, tool model.Tool) []model.Move {
	if r.Len() == 0 {
		return nil
	}

	start, _ := r.Items[0].Ends()
	moves := []model.Move{{Kind: model.MoveRapid, X: start.X, Y: start.Y, Z: retractZ}}
	if lastDepth < top && lastDepth > z {
		moves = append(moves, model.Move{Kind: model.MoveRapid, X: start.X, Y: start.Y, Z: lastDepth})
	}
	moves = append(moves, model.Move{Kind: model.MoveFeed, X: start.X, Y: start.Y, Z: z, Feed: tool.PlungeRate})

	cur := start
	for _, p := range r.Items {
		p0, p1 := p.Ends()
		if !geom.PointsCoincide(cur, p0) {
			moves = append(moves, feedTo(p0, z, tool))
		}
		switch p := p.(type) {
		case *geom.Line:
			if !geom.PointsCoincide(p0, p1) {
				moves = append(moves, feedTo(p1, z, tool))
			}
		case *geom.Arc:
			if p.Radius < geom.Precision {
				break
			}
			kind := model.MoveArcCCW
			if p.Clockwise() {
				kind = model.MoveArcCW
			}
			c := p.Center().Sub(p0)
			moves = append(moves, model.Move{
				Kind: kind, X: p1.X, Y: p1.Y, Z: z,
				I: c.X, J: c.Y, Feed: tool.FeedRate,
			})
		}
		cur = p1
	}

	return append(moves, model.Move{Kind: model.MoveRapid, X: cur.X, Y: cur.Y, Z: retractZ})
}

func feedTo(p geom.Point2D, z float64, tool model.Tool) model.Move {
	return model.Move{Kind: model.MoveFeed, X: p.X, Y: p.Y, Z: z, Feed: tool.FeedRate}
}
