package rules

import (
	"fmt"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/dataset"
)

// LayerDimensionCandidates are tried in order when a LayerFilterRule has no
// explicit layer dimension.
var LayerDimensionCandidates = []string{"mesh2d_nLayers", "nmesh2d_layer", "layer"}

// LayerFilterRule selects one vertical layer of a 3D variable.
type LayerFilterRule struct {
	Base

	// LayerNumber is 1-based
	LayerNumber int

	// LayerDimension overrides the detected layer dimension
	LayerDimension string
}

// NewLayerFilterRule creates a layer filter rule.
func NewLayerFilterRule(name, input, output string, layerNumber int) *LayerFilterRule {
	return &LayerFilterRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input},
			OutputName: output,
		},
		LayerNumber: layerNumber,
	}
}

// Kind returns KindArray.
func (r *LayerFilterRule) Kind() Kind { return KindArray }

// Validate requires a positive layer number.
func (r *LayerFilterRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if r.LayerNumber < 1 {
		logger.Error("layer number must be 1 or greater", "rule", r.RuleName, "layer_number", r.LayerNumber)
		valid = false
	}
	return valid
}

// Execute returns the selected layer with the layer dimension removed.
func (r *LayerFilterRule) Execute(input *dataset.Variable, logger Logger) (*dataset.Variable, error) {
	dim, err := layerDimension(input, r.LayerDimension)
	if err != nil {
		return nil, err
	}
	logger.Debug("selecting layer", "rule", r.RuleName, "dimension", dim, "layer", r.LayerNumber)
	out, err := input.Isel(dim, r.LayerNumber-1)
	if err != nil {
		return nil, fmt.Errorf("layer %d: %w", r.LayerNumber, err)
	}
	return out, nil
}

func layerDimension(v *dataset.Variable, explicit string) (string, error) {
	if explicit != "" {
		if !v.HasDim(explicit) {
			return "", fmt.Errorf("variable has no layer dimension %q (dimensions: %v)", explicit, v.Dims)
		}
		return explicit, nil
	}
	for _, dim := range LayerDimensionCandidates {
		if v.HasDim(dim) {
			return dim, nil
		}
	}
	return "", fmt.Errorf("variable has no layer dimension (looked for %v in %v)", LayerDimensionCandidates, v.Dims)
}

// AxisFilterRule selects one position along a named dimension.
type AxisFilterRule struct {
	Base

	// ElementIndex is 1-based
	ElementIndex int
	AxisName     string
}

// NewAxisFilterRule creates an axis filter rule.
func NewAxisFilterRule(name, input, output, axis string, elementIndex int) *AxisFilterRule {
	return &AxisFilterRule{
		Base: Base{
			RuleName:   name,
			InputNames: []string{input},
			OutputName: output,
		},
		ElementIndex: elementIndex,
		AxisName:     axis,
	}
}

// Kind returns KindArray.
func (r *AxisFilterRule) Kind() Kind { return KindArray }

// Validate requires an axis name and a positive index.
func (r *AxisFilterRule) Validate(logger Logger) bool {
	valid := r.validateBase(logger)
	if r.AxisName == "" {
		logger.Error("axis filter has no axis name", "rule", r.RuleName)
		valid = false
	}
	if r.ElementIndex < 1 {
		logger.Error("element index must be 1 or greater", "rule", r.RuleName, "element_index", r.ElementIndex)
		valid = false
	}
	return valid
}

// Execute returns the selected slice with the axis removed.
func (r *AxisFilterRule) Execute(input *dataset.Variable, _ Logger) (*dataset.Variable, error) {
	out, err := input.Isel(r.AxisName, r.ElementIndex-1)
	if err != nil {
		return nil, fmt.Errorf("element %d of %q: %w", r.ElementIndex, r.AxisName, err)
	}
	return out, nil
}
