package toolpath

import (
	"errors"
	"fmt"

	"github.com/piwi3910/SlabCAM/internal/geom"
)

// ErrStep is returned for a non-positive depth step.
var ErrStep = errors.New("toolpath: depth step must be positive")

// DepthLayers returns the Z levels to cut between top and target, top
// excluded. Levels drop by step each time and the last one is exactly
// target: once the remaining depth is within one step the schedule snaps
// to it, so float drift never adds a sliver layer.
func DepthLayers(top, target, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, ErrStep
	}
	if target >= top-geom.Precision {
		return nil, fmt.Errorf("toolpath: target %.4f is not below top %.4f", target, top)
	}

	var layers []float64
	for z := top; ; {
		if z-target <= step+geom.Precision {
			return append(layers, target), nil
		}
		z -= step
		layers = append(layers, z)
	}
}
