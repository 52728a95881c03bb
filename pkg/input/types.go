package input

import (
	"github.com/Deltares/D-EcoImpact-sub000/pkg/rules"
)

// ModelData is the parsed content of an input file.
type ModelData struct {
	// Name is derived from the input file name
	Name string

	// Version is the input file format version
	Version string

	// Datasets are the input datasets in file order
	Datasets []DatasetData

	// Output describes where and what to write
	Output OutputData

	// Rules are the configured rules in file order
	Rules []rules.Rule
}

// DatasetData describes one input dataset.
type DatasetData struct {
	// Filename may contain glob patterns; relative paths are resolved against
	// the directory of the input file
	Filename string

	// VariableMapping renames variables after reading (old name -> new name)
	VariableMapping map[string]string
}

// OutputData describes the output dataset.
type OutputData struct {
	Filename string

	// SaveOnlyVariables limits the written variables; empty means all
	SaveOnlyVariables []string
}
