package dataset

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Variable is an N-dimensional array with named dimensions.
// Data is stored row-major: the last dimension varies fastest.
type Variable struct {
	// Dims are the dimension names, outermost first
	Dims []string

	// Shape holds the size of each dimension in Dims
	Shape []int

	// Data holds Size() values in row-major order
	Data []float64

	// Attrs are descriptive attributes (long_name, units, location, mesh, ...)
	Attrs map[string]string

	// Coords are the coordinates associated with this variable, keyed by name
	Coords map[string]*Coordinate
}

// NewVariable creates a variable. When data is nil a zero-filled buffer is
// allocated. The dims and shape slices are copied; data is used as-is.
func NewVariable(dims []string, shape []int, data []float64) (*Variable, error) {
	if len(dims) != len(shape) {
		return nil, &ShapeError{
			Op:      "new",
			Message: fmt.Sprintf("%d dimension names for %d dimension sizes", len(dims), len(shape)),
		}
	}

	seen := make(map[string]bool, len(dims))
	for i, dim := range dims {
		if dim == "" {
			return nil, &ShapeError{Op: "new", Message: fmt.Sprintf("dimension %d has no name", i)}
		}
		if seen[dim] {
			return nil, &DimensionError{Dim: dim, Message: "appears more than once"}
		}
		seen[dim] = true
		if shape[i] < 0 {
			return nil, &DimensionError{Dim: dim, Message: fmt.Sprintf("negative size %d", shape[i])}
		}
	}

	size := product(shape)
	if data == nil {
		data = make([]float64, size)
	}
	if len(data) != size {
		return nil, &ShapeError{
			Op:      "new",
			Message: fmt.Sprintf("shape %v needs %d values, got %d", shape, size, len(data)),
		}
	}

	return &Variable{
		Dims:   slices.Clone(dims),
		Shape:  slices.Clone(shape),
		Data:   data,
		Attrs:  make(map[string]string),
		Coords: make(map[string]*Coordinate),
	}, nil
}

// MustVariable is like NewVariable but panics on error.
// It is intended for tests and package-level fixtures.
func MustVariable(dims []string, shape []int, data []float64) *Variable {
	v, err := NewVariable(dims, shape, data)
	if err != nil {
		panic(err)
	}
	return v
}

// Size returns the total number of cells.
func (v *Variable) Size() int {
	return product(v.Shape)
}

// NDim returns the number of dimensions.
func (v *Variable) NDim() int {
	return len(v.Dims)
}

// DimIndex returns the position of dim in Dims, or -1.
func (v *Variable) DimIndex(dim string) int {
	return slices.Index(v.Dims, dim)
}

// HasDim reports whether the variable has the named dimension.
func (v *Variable) HasDim(dim string) bool {
	return v.DimIndex(dim) >= 0
}

// DimSize returns the size of the named dimension.
func (v *Variable) DimSize(dim string) (int, bool) {
	i := v.DimIndex(dim)
	if i < 0 {
		return 0, false
	}
	return v.Shape[i], true
}

// Strides returns the row-major stride of each dimension.
func (v *Variable) Strides() []int {
	return strides(v.Shape)
}

// Flat converts an N-dimensional index into a flat offset.
func (v *Variable) Flat(idx []int) int {
	flat := 0
	for i, s := range v.Strides() {
		flat += idx[i] * s
	}
	return flat
}

// Index converts a flat offset into an N-dimensional index.
func (v *Variable) Index(flat int) []int {
	idx := make([]int, len(v.Shape))
	for i := len(v.Shape) - 1; i >= 0; i-- {
		if v.Shape[i] == 0 {
			continue
		}
		idx[i] = flat % v.Shape[i]
		flat /= v.Shape[i]
	}
	return idx
}

// At returns the value at the given N-dimensional index.
func (v *Variable) At(idx ...int) float64 {
	return v.Data[v.Flat(idx)]
}

// ForEachIndex calls fn for every index of the variable in row-major order.
// The idx slice is reused between calls and must not be retained.
func (v *Variable) ForEachIndex(fn func(idx []int, flat int)) {
	size := v.Size()
	if size == 0 {
		return
	}
	idx := make([]int, len(v.Shape))
	for flat := 0; flat < size; flat++ {
		fn(idx, flat)
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < v.Shape[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// Copy returns a deep copy of the data and attributes. Coordinates are
// shared since they are never mutated after creation.
func (v *Variable) Copy() *Variable {
	return v.WithData(slices.Clone(v.Data))
}

// WithData returns a variable with the same dimensions, attributes and
// coordinates as v but holding data. It panics if len(data) != v.Size().
func (v *Variable) WithData(data []float64) *Variable {
	if len(data) != v.Size() {
		panic(fmt.Sprintf("dataset: WithData got %d values for shape %v", len(data), v.Shape))
	}
	return &Variable{
		Dims:   slices.Clone(v.Dims),
		Shape:  slices.Clone(v.Shape),
		Data:   data,
		Attrs:  maps.Clone(v.attrs()),
		Coords: maps.Clone(v.coords()),
	}
}

// Map returns a copy of v with fn applied to every value.
func (v *Variable) Map(fn func(float64) float64) *Variable {
	out := make([]float64, len(v.Data))
	for i, x := range v.Data {
		out[i] = fn(x)
	}
	return v.WithData(out)
}

// SameDims reports whether both variables have the same dimension names in the same order.
func (v *Variable) SameDims(o *Variable) bool {
	return slices.Equal(v.Dims, o.Dims)
}

// SameShape reports whether both variables have identical dims and sizes.
func (v *Variable) SameShape(o *Variable) bool {
	return v.SameDims(o) && slices.Equal(v.Shape, o.Shape)
}

// CountNaN returns the number of missing values.
func (v *Variable) CountNaN() int {
	n := 0
	for _, x := range v.Data {
		if math.IsNaN(x) {
			n++
		}
	}
	return n
}

func (v *Variable) attrs() map[string]string {
	if v.Attrs == nil {
		return map[string]string{}
	}
	return v.Attrs
}

func (v *Variable) coords() map[string]*Coordinate {
	if v.Coords == nil {
		return map[string]*Coordinate{}
	}
	return v.Coords
}

// coordsWithin returns the subset of coordinates whose dims all appear in dims.
func coordsWithin(coords map[string]*Coordinate, dims []string) map[string]*Coordinate {
	out := make(map[string]*Coordinate, len(coords))
	for name, c := range coords {
		if isSubset(c.Dims, dims) {
			out[name] = c
		}
	}
	return out
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

func isSubset(sub, set []string) bool {
	for _, s := range sub {
		if !slices.Contains(set, s) {
			return false
		}
	}
	return true
}

// SameDimSet reports whether a and b contain the same names regardless of order.
func SameDimSet(a, b []string) bool {
	return len(a) == len(b) && isSubset(a, b) && isSubset(b, a)
}
