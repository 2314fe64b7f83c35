// Package toolpath turns an ordered chain into per-depth cutter moves. Every
// depth layer works on its own copy of the chain with a private offset
// context, so layers never see each other's trimming.
package toolpath

import (
	"context"
	"errors"
	"fmt"

	"github.com/piwi3910/SlabCAM/internal/geom"
	"github.com/piwi3910/SlabCAM/internal/logging"
	"github.com/piwi3910/SlabCAM/internal/model"
	"github.com/piwi3910/SlabCAM/internal/path"
	"github.com/piwi3910/SlabCAM/internal/pocket"
)

var (
	ErrEmptyChain = errors.New("toolpath: chain has no primitives")
	ErrNoTool     = errors.New("toolpath: tool diameter must be positive")
)

// Job carries everything Build needs besides the chain.
type Job struct {
	Settings model.CutSettings
	Trim     path.TrimOptions
}

// NewJob returns a job with default trimming.
func NewJob(settings model.CutSettings) Job {
	return Job{Settings: settings, Trim: path.DefaultTrimOptions()}
}

// Layer is the result for one depth.
type Layer struct {
	Z       float64
	Contour *path.Ring     // Finished tool center path
	Pocket  *pocket.Pocket // Nil unless pocketing
	Moves   []model.Move
}

// Plan is the full result of Build for one chain.
type Plan struct {
	ChainID string
	Closed  bool
	Layers  []Layer
}

// Moves concatenates the moves of every layer.
func (p *Plan) Moves() []model.Move {
	var all []model.Move
	for _, l := range p.Layers {
		all = append(all, l.Moves...)
	}
	return all
}

// Bounds covers the contour of every layer.
func (p *Plan) Bounds() geom.Rect {
	box := geom.EmptyRect()
	for _, l := range p.Layers {
		box = box.Union(l.Contour.AABB())
	}
	return box
}

// Length sums the contour lengths over all layers.
func (p *Plan) Length() float64 {
	var total float64
	for _, l := range p.Layers {
		total += l.Contour.Length()
	}
	return total
}

// Build computes the layers for chain. The chain itself is never modified;
// its placement (origin and rotation) is kept and the compensation comes
// from the job. Closed chains are cut counter-clockwise so that outside
// compensation lands outside.
//
// Build checks ctx between layers and returns its error when cancelled.
func Build(ctx context.Context, chain *path.Ring, job Job) (*Plan, error) {
	if chain.Len() == 0 {
		return nil, ErrEmptyChain
	}
	s := job.Settings
	if s.Tool.Diameter <= 0 {
		return nil, ErrNoTool
	}
	layers, err := DepthLayers(s.StockTop, s.StockTop-s.CutDepth, s.PassDepth)
	if err != nil {
		return nil, fmt.Errorf("chain %s: %w", chain.ID, err)
	}

	work := chain.Duplicate()
	if work.Closed && work.SignedArea() < 0 {
		work.Flip()
	}

	plan := &Plan{ChainID: chain.ID, Closed: work.Closed}
	last := s.StockTop
	for i, z := range layers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("chain %s layer %d: %w", chain.ID, i+1, err)
		}

		layer := buildLayer(work, job, z, last)
		plan.Layers = append(plan.Layers, layer)
		logging.Logger().Info("layer built",
			"chain", chain.ID, "layer", i+1, "of", len(layers), "z", z,
			"items", layer.Contour.Len(), "moves", len(layer.Moves))
		last = z
	}
	return plan, nil
}

// layerContext is the private offset context of one depth layer.
func layerContext(base geom.Context, s model.CutSettings, side, depth, z float64) geom.Context {
	return geom.Context{
		Origin:   base.Origin,
		Rotation: base.Rotation,
		Side:     side,
		Tool:     s.Tool.Radius(),
		Eval:     s.Tool.TaperAt(depth),
		Z:        [2]float64{z, z},
	}
}

func buildLayer(work *path.Ring, job Job, z, last float64) Layer {
	s := job.Settings
	depth := s.StockTop - z
	side := s.Compensation.Side()

	contour := work.Duplicate()
	contour.Context = layerContext(work.Context, s, side, depth, z)
	pushed := path.PushOffset(contour, job.Trim)
	path.BridgeGaps(pushed)

	layer := Layer{Z: z, Contour: pushed}
	if s.Pocket && work.Closed {
		area := pushed
		if side >= 0 {
			inner := work.Duplicate()
			inner.Context = layerContext(work.Context, s, -1, depth, z)
			area = path.PushOffset(inner, job.Trim)
		}
		layer.Pocket = pocket.Prep(area, 0, area.Len(), s.RowSpacing(), s.Tool.Diameter)
		layer.Moves = layer.Pocket.Make(s.StockTop, z, last, s.RetractZ(), s.Tool)
	}
	layer.Moves = append(layer.Moves, ContourMoves(pushed, s.StockTop, z, last, s.RetractZ(), s.Tool)...)
	return layer
}
