package rules

import (
	"fmt"
	"math"
	"slices"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// Default input names for the depth average rule, as written by D-Flow FM.
const (
	DefaultBedLevelVariable   = "mesh2d_flowelem_bl"
	DefaultWaterLevelVariable = "mesh2d_s1"
	DefaultInterfacesVariable = "mesh2d_interface_z"
)

// DepthAverageRule averages a layered variable over the water column. Each
// layer is weighted by its thickness between the interface levels, clipped to
// the range between bed level and water level.
//
// Inputs are, in order: the layered variable, the bed level, the water level
// and the interface levels. The interface variable has one dimension with one
// entry more than there are layers, ordered from bottom to top.
type DepthAverageRule struct {
	Base
	LayerDimension string
}

// NewDepthAverageRule creates a depth average rule over the given inputs.
func NewDepthAverageRule(name, input, bedLevel, waterLevel, interfaces, output string) *DepthAverageRule {
	return &DepthAverageRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input, bedLevel, waterLevel, interfaces},
			OutputName: output,
		},
	}
}

// Kind returns KindMultiArray.
func (r *DepthAverageRule) Kind() Kind { return KindMultiArray }

// Validate requires exactly four inputs.
func (r *DepthAverageRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if len(r.InputNames) != 4 {
		logger.Error("depth average needs variable, bed level, water level and interfaces inputs",
			"rule", r.RuleName, "inputs", len(r.InputNames))
		valid = false
	}
	return valid
}

// ExecuteMulti returns the depth averaged variable without the layer dimension.
func (r *DepthAverageRule) ExecuteMulti(inputs map[string]*dataset.Variable, logger Logger) (*dataset.Variable, error) {
	arrays, err := orderedInputs(r.InputNames, inputs)
	if err != nil {
		return nil, err
	}
	if len(arrays) != 4 {
		return nil, fmt.Errorf("depth average needs 4 inputs, got %d", len(arrays))
	}
	values, bed, water, interfaces := arrays[0], arrays[1], arrays[2], arrays[3]

	layerDim, err := layerDimension(values, r.LayerDimension)
	if err != nil {
		return nil, err
	}
	nLayers, _ := values.DimSize(layerDim)
	if interfaces.NDim() != 1 || interfaces.Size() != nLayers+1 {
		return nil, fmt.Errorf("interfaces %q must be one-dimensional with %d entries, got shape %v",
			r.InputNames[3], nLayers+1, interfaces.Shape)
	}

	// Frame without the layer dimension, with layers moved innermost.
	frame, err := values.Isel(layerDim, 0)
	if err != nil {
		return nil, err
	}
	layered, err := values.Transpose(slices.Concat(frame.Dims, []string{layerDim}))
	if err != nil {
		return nil, err
	}

	bedAligned, added, err := bed.BroadcastLike(frame)
	if err != nil {
		return nil, fmt.Errorf("bed level %q: %w", r.InputNames[1], err)
	}
	if len(added) > 0 {
		logger.Debug("broadcast bed level", "rule", r.RuleName, "added_dims", added)
	}
	waterAligned, _, err := water.BroadcastLike(frame)
	if err != nil {
		return nil, fmt.Errorf("water level %q: %w", r.InputNames[2], err)
	}
	if !bedAligned.SameShape(frame) || !waterAligned.SameShape(frame) {
		return nil, fmt.Errorf("bed level and water level must span dimensions %v", frame.Dims)
	}

	z := interfaces.Data
	out := make([]float64, frame.Size())
	for i := range out {
		bottom, top := bedAligned.Data[i], waterAligned.Data[i]
		if math.IsNaN(bottom) || math.IsNaN(top) || top <= bottom {
			out[i] = math.NaN()
			continue
		}

		var weighted, depth float64
		for k := 0; k < nLayers; k++ {
			v := layered.Data[i*nLayers+k]
			if math.IsNaN(v) {
				continue
			}
			thickness := clip(z[k+1], bottom, top) - clip(z[k], bottom, top)
			if thickness <= 0 {
				continue
			}
			weighted += v * thickness
			depth += thickness
		}
		if depth == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = weighted / depth
	}

	return frame.WithData(out), nil
}

func clip(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
