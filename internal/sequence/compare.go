package sequence

import (
	"github.com/piwi3910/SlabCAM/internal/toolpath"
)

// Comparison holds one strategy's result next to the drawing order.
type Comparison struct {
	Result
	Saved float64 // Rapid travel saved against the drawing order
}

// Compare runs every strategy on the same plans so their travel can be
// shown side by side.
func Compare(plans []*toolpath.Plan, seed int64) []Comparison {
	strategies := []Strategy{StrategyDrawing, StrategyNearest, StrategyGenetic}
	results := make([]Comparison, 0, len(strategies))

	var base float64
	for i, s := range strategies {
		r := Solve(plans, s, seed)
		if i == 0 {
			base = r.Rapid
		}
		results = append(results, Comparison{Result: r, Saved: base - r.Rapid})
	}
	return results
}
