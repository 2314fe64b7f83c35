package toolpath

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
)

const eps = 1e-6

func squareChain(size float64) *path.Ring {
	r := path.New(geom.Context{},
		geom.NewLine(0, 0, size, 0),
		geom.NewLine(size, 0, size, size),
		geom.NewLine(size, size, 0, size),
		geom.NewLine(0, size, 0, 0),
	)
	r.Closed = true
	return r
}

func testSettings() model.CutSettings {
	s := model.DefaultSettings()
	s.Tool = model.Tool{Name: "2mm", Diameter: 2, FeedRate: 1000, PlungeRate: 300}
	s.SafeZ = 5
	s.CutDepth = 4
	s.PassDepth = 2
	s.Compensation = model.CompOutside
	return s
}

func TestDepthLayers(t *testing.T) {
	layers, err := DepthLayers(0, -18, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{-6, -12, -18}, layers)

	layers, err = DepthLayers(0, -10, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, -6, -9, -10}, layers)
}

func TestDepthLayersSnapsToTarget(t *testing.T) {
	layers, err := DepthLayers(0, -1, 0.1)
	require.NoError(t, err)
	require.Len(t, layers, 10)
	assert.Equal(t, -1.0, layers[len(layers)-1])
	for i := 1; i < len(layers); i++ {
		assert.Less(t, layers[i], layers[i-1])
	}
}

func TestDepthLayersErrors(t *testing.T) {
	_, err := DepthLayers(0, -5, 0)
	assert.ErrorIs(t, err, ErrStep)
	_, err = DepthLayers(0, -5, -1)
	assert.ErrorIs(t, err, ErrStep)
	_, err = DepthLayers(0, 0, 1)
	assert.Error(t, err)
}

func TestBuildOutsideContour(t *testing.T) {
	chain := squareChain(10)
	plan, err := Build(context.Background(), chain, NewJob(testSettings()))
	require.NoError(t, err)
	require.Len(t, plan.Layers, 2)
	assert.True(t, plan.Closed)
	assert.Equal(t, chain.ID, plan.ChainID)

	box := plan.Bounds()
	assert.InDelta(t, -1, box.Min.X, eps)
	assert.InDelta(t, -1, box.Min.Y, eps)
	assert.InDelta(t, 11, box.Max.X, eps)
	assert.InDelta(t, 11, box.Max.Y, eps)

	for _, l := range plan.Layers {
		assert.Equal(t, 8, l.Contour.Len())
		assert.True(t, l.Contour.IsContinuous())
		assert.Nil(t, l.Pocket)
		arcs := 0
		for _, m := range l.Moves {
			if m.Kind == model.MoveArcCCW {
				arcs++
				assert.InDelta(t, 1.0, m.I*m.I+m.J*m.J, eps, "corner arcs have the tool radius")
			}
		}
		assert.Equal(t, 4, arcs)
	}

	first := plan.Layers[0].Moves
	assert.Equal(t, model.Move{Kind: model.MoveRapid, X: 0, Y: -1, Z: 5}, first[0])
	assert.Equal(t, model.MoveFeed, first[1].Kind)
	assert.Equal(t, -2.0, first[1].Z)
	assert.Equal(t, 300.0, first[1].Feed)

	second := plan.Layers[1].Moves
	assert.Equal(t, model.MoveRapid, second[1].Kind)
	assert.Equal(t, -2.0, second[1].Z, "rapid down to the cleared depth")
	assert.Equal(t, -4.0, second[2].Z)

	// The input chain is untouched.
	p0, _ := chain.Items[0].Ends()
	assert.Equal(t, geom.Pt(0, 0), p0)
	assert.Equal(t, 4, chain.Len())
	assert.Equal(t, geom.Context{}, chain.Context)

	assert.Len(t, plan.Moves(), len(first)+len(second))
	assert.Greater(t, plan.Length(), 2*40.0)
}

func TestBuildNormalizesClockwiseChains(t *testing.T) {
	chain := squareChain(10)
	chain.Flip()
	plan, err := Build(context.Background(), chain, NewJob(testSettings()))
	require.NoError(t, err)

	box := plan.Bounds()
	assert.InDelta(t, -1, box.Min.X, eps)
	assert.InDelta(t, 11, box.Max.Y, eps)
}

func TestBuildPocket(t *testing.T) {
	for _, comp := range []model.Compensation{model.CompInside, model.CompOutside} {
		s := testSettings()
		s.Pocket = true
		s.Compensation = comp

		plan, err := Build(context.Background(), squareChain(10), NewJob(s))
		require.NoError(t, err)
		for _, l := range plan.Layers {
			require.NotNil(t, l.Pocket, comp.String())
			assert.Equal(t, 11, l.Pocket.Len(), comp.String())
			for _, row := range l.Pocket.Rows {
				for _, span := range row.Spans {
					assert.InDelta(t, 1.2, span.X0, eps)
					assert.InDelta(t, 8.8, span.X1, eps)
				}
			}
			assert.Greater(t, len(l.Moves), 11*4)
		}
	}
}

func TestBuildTaperedTool(t *testing.T) {
	s := testSettings()
	s.Tool = model.Tool{Diameter: 0.2, TaperAngle: 90, FeedRate: 500, PlungeRate: 100}
	s.CutDepth = 2
	s.PassDepth = 1

	plan, err := Build(context.Background(), squareChain(10), NewJob(s))
	require.NoError(t, err)
	require.Len(t, plan.Layers, 2)
	assert.InDelta(t, -1.1, plan.Layers[0].Contour.AABB().Min.X, eps)
	assert.InDelta(t, -2.1, plan.Layers[1].Contour.AABB().Min.X, eps)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, squareChain(10), NewJob(testSettings()))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build(context.Background(), path.New(geom.Context{}), NewJob(testSettings()))
	assert.ErrorIs(t, err, ErrEmptyChain)

	s := testSettings()
	s.Tool.Diameter = 0
	_, err = Build(context.Background(), squareChain(1), NewJob(s))
	assert.ErrorIs(t, err, ErrNoTool)

	s = testSettings()
	s.PassDepth = 0
	_, err = Build(context.Background(), squareChain(1), NewJob(s))
	assert.ErrorIs(t, err, ErrStep)
}

func TestContourMovesArcs(t *testing.T) {
	r := path.New(geom.Context{},
		geom.NewLine(0, 0, 5, 0),
		geom.NewArcCenter(geom.Pt(5, 2), 2, 270, -90),
		geom.NewLine(8, 8, 9, 9),
	)
	tool := model.Tool{FeedRate: 100, PlungeRate: 20}
	moves := ContourMoves(r, 0, -1, 0, 3, tool)

	require.Len(t, moves, 7)
	assert.Equal(t, model.Move{Kind: model.MoveRapid, X: 0, Y: 0, Z: 3}, moves[0])
	assert.Equal(t, model.Move{Kind: model.MoveFeed, X: 0, Y: 0, Z: -1, Feed: 20}, moves[1])
	assert.Equal(t, model.Move{Kind: model.MoveFeed, X: 5, Y: 0, Z: -1, Feed: 100}, moves[2])

	arc := moves[3]
	assert.Equal(t, model.MoveArcCW, arc.Kind)
	assert.InDelta(t, 3, arc.X, eps)
	assert.InDelta(t, 2, arc.Y, eps)
	assert.InDelta(t, 0, arc.I, eps)
	assert.InDelta(t, 2, arc.J, eps)

	// The open junction is crossed with a feed.
	assert.Equal(t, model.MoveFeed, moves[4].Kind)
	assert.InDelta(t, 8, moves[4].X, eps)
	assert.Equal(t, model.Move{Kind: model.MoveRapid, X: 9, Y: 9, Z: 3}, moves[6])

	assert.Nil(t, ContourMoves(path.New(geom.Context{}), 0, -1, 0, 3, tool))
}

func TestBuildRaisedStock(t *testing.T) {
	s := testSettings()
	s.StockTop = 10
	s.CutDepth = 6
	s.Pocket = true
	plan, err := Build(context.Background(), squareChain(10), NewJob(s))
	require.NoError(t, err)
	require.Len(t, plan.Layers, 3)

	for i, want := range []float64{8, 6, 4} {
		layer := plan.Layers[i]
		assert.Equal(t, want, layer.Z)
		require.NotNil(t, layer.Pocket)

		var rapids []float64
		for _, m := range layer.Moves {
			assert.GreaterOrEqual(t, m.Z, want, "layer %d", i+1)
			assert.LessOrEqual(t, m.Z, 15.0, "layer %d", i+1)
			if m.Kind == model.MoveRapid && m.Z < 15 {
				rapids = append(rapids, m.Z)
			}
		}
		if i == 0 {
			assert.Empty(t, rapids, "first layer plunges from the retract height")
			continue
		}
		require.NotEmpty(t, rapids, "layer %d", i+1)
		for _, z := range rapids {
			assert.Equal(t, plan.Layers[i-1].Z, z, "layer %d", i+1)
		}
	}

	// Each layer ends retracted above the stock.
	moves := plan.Moves()
	assert.Equal(t, 15.0, moves[len(moves)-1].Z)
	assert.Equal(t, 15.0, moves[0].Z)
}

func TestContourMovesRaisedStock(t *testing.T) {
	tool := model.Tool{FeedRate: 100, PlungeRate: 20}
	moves := ContourMoves(squareChain(10), 10, 6, 8, 15, tool)

	assert.Equal(t, model.Move{Kind: model.MoveRapid, X: 0, Y: 0, Z: 15}, moves[0])
	assert.Equal(t, model.Move{Kind: model.MoveRapid, X: 0, Y: 0, Z: 8}, moves[1])
	assert.Equal(t, model.Move{Kind: model.MoveFeed, X: 0, Y: 0, Z: 6, Feed: 20}, moves[2])
	assert.Equal(t, 15.0, moves[len(moves)-1].Z)

	moves = ContourMoves(squareChain(10), 10, 8, 10, 15, tool)
	assert.Equal(t, model.MoveFeed, moves[1].Kind)
	assert.Equal(t, 8.0, moves[1].Z)
}
