package gcode

import (
	"math"

	"github.com/piwi3910/SlabCAM/internal/model"
)

// CheckClampCollisions walks parsed moves and reports every cutting move
// whose tool edge comes within ClampClearance of a clamp zone. A move counts
// as cutting when it ends below the stock top. Lines and arcs are sampled at intervals
// no longer than the tool radius, so narrow clamps are not stepped over.
//
// At most one collision is reported per clamp per move.
func CheckClampCollisions(moves []GCodeMove, settings model.CutSettings) []model.Collision {
	if len(settings.ClampZones) == 0 {
		return nil
	}

	toolRadius := settings.Tool.Radius()
	effective := toolRadius + settings.ClampClearance
	step := math.Max(toolRadius, 0.5)

	var collisions []model.Collision
	for _, m := range moves {
		if m.ToZ >= settings.StockTop {
			continue
		}
		positions := samplePositions(m, step)
		for _, cz := range settings.ClampZones {
			for _, pos := range positions {
				dist := distanceToClampZone(pos[0], pos[1], cz)
				if dist < effective {
					collisions = append(collisions, model.Collision{
						ClampLabel: cz.Label,
						Line:       m.Line,
						ToolX:      pos[0],
						ToolY:      pos[1],
						Distance:   dist - toolRadius,
					})
					break
				}
			}
		}
	}
	return collisions
}

// samplePositions returns tool center positions along a move, both ends
// included.
func samplePositions(m GCodeMove, step float64) [][2]float64 {
	if m.Type != MoveArcCW && m.Type != MoveArcCCW {
		length := math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
		n := int(math.Ceil(length / step))
		if n < 1 {
			n = 1
		}
		out := make([][2]float64, 0, n+1)
		for i := 0; i <= n; i++ {
			t := float64(i) / float64(n)
			out = append(out, [2]float64{m.FromX + (m.ToX-m.FromX)*t, m.FromY + (m.ToY-m.FromY)*t})
		}
		return out
	}

	cx, cy := m.FromX+m.I, m.FromY+m.J
	r := math.Hypot(m.I, m.J)
	a0 := math.Atan2(m.FromY-cy, m.FromX-cx)
	a1 := math.Atan2(m.ToY-cy, m.ToX-cx)
	sweep := a1 - a0
	if m.Type == MoveArcCCW {
		for sweep <= 1e-9 {
			sweep += 2 * math.Pi
		}
	} else {
		for sweep >= -1e-9 {
			sweep -= 2 * math.Pi
		}
	}

	n := int(math.Ceil(math.Abs(sweep) * r / step))
	if n < 4 {
		n = 4
	}
	out := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		out = append(out, [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return out
}

// distanceToClampZone returns the minimum distance from a point to the
// nearest edge of a clamp zone rectangle. Returns 0 if inside.
func distanceToClampZone(px, py float64, cz model.ClampZone) float64 {
	dx := math.Max(0, math.Max(cz.X-px, px-(cz.X+cz.Width)))
	dy := math.Max(0, math.Max(cz.Y-py, py-(cz.Y+cz.Height)))
	return math.Hypot(dx, dy)
}
