package dataset

import (
	"fmt"
	"maps"
	"slices"
)

// ReduceFunc collapses the values found along one dimension into a single value.
// The slice is reused between calls and must not be retained.
type ReduceFunc func(values []float64) float64

// Isel selects a single position along dim and drops that dimension.
func (v *Variable) Isel(dim string, index int) (*Variable, error) {
	size, ok := v.DimSize(dim)
	if !ok {
		return nil, &DimensionError{Dim: dim, Message: fmt.Sprintf("not found in %v", v.Dims)}
	}
	if index < 0 || index >= size {
		return nil, &DimensionError{
			Dim:     dim,
			Message: fmt.Sprintf("index %d out of range [0, %d)", index, size),
		}
	}
	return v.collapse(dim, "", [][]int{{index}}, func(values []float64) float64 {
		return values[0]
	})
}

// Reduce collapses dim by applying fn to the values along it and drops the dimension.
func (v *Variable) Reduce(dim string, fn ReduceFunc) (*Variable, error) {
	size, ok := v.DimSize(dim)
	if !ok {
		return nil, &DimensionError{Dim: dim, Message: fmt.Sprintf("not found in %v", v.Dims)}
	}
	all := make([]int, size)
	for i := range all {
		all[i] = i
	}
	return v.collapse(dim, "", [][]int{all}, fn)
}

// GroupReduce replaces dim by newDim with one entry per group. Each group
// lists the positions along dim that are reduced into that entry.
func (v *Variable) GroupReduce(dim, newDim string, groups [][]int, fn ReduceFunc) (*Variable, error) {
	size, ok := v.DimSize(dim)
	if !ok {
		return nil, &DimensionError{Dim: dim, Message: fmt.Sprintf("not found in %v", v.Dims)}
	}
	if newDim == "" {
		return nil, &ShapeError{Op: "group_reduce", Message: "new dimension has no name"}
	}
	if newDim != dim && v.HasDim(newDim) {
		return nil, &DimensionError{Dim: newDim, Message: "already present"}
	}
	for _, g := range groups {
		for _, i := range g {
			if i < 0 || i >= size {
				return nil, &DimensionError{
					Dim:     dim,
					Message: fmt.Sprintf("group index %d out of range [0, %d)", i, size),
				}
			}
		}
	}
	return v.collapse(dim, newDim, groups, fn)
}

// collapse implements Isel, Reduce and GroupReduce. With an empty newDim the
// dimension is dropped and groups must hold exactly one entry.
func (v *Variable) collapse(dim, newDim string, groups [][]int, fn ReduceFunc) (*Variable, error) {
	pos := v.DimIndex(dim)
	if newDim == "" && len(groups) != 1 {
		return nil, &ShapeError{Op: "reduce", Message: "dropping a dimension needs exactly one group"}
	}

	outDims := slices.Clone(v.Dims)
	outShape := slices.Clone(v.Shape)
	if newDim == "" {
		outDims = slices.Delete(outDims, pos, pos+1)
		outShape = slices.Delete(outShape, pos, pos+1)
	} else {
		outDims[pos] = newDim
		outShape[pos] = len(groups)
	}

	out, err := NewVariable(outDims, outShape, nil)
	if err != nil {
		return nil, err
	}
	out.Attrs = maps.Clone(v.attrs())
	out.Coords = coordsWithin(v.coords(), outDims)

	srcStrides := v.Strides()
	dimStride := srcStrides[pos]
	buf := make([]float64, 0, v.Shape[pos])

	out.ForEachIndex(func(idx []int, flat int) {
		base := 0
		group := 0
		src := 0
		for i := range v.Dims {
			if i == pos {
				if newDim != "" {
					group = idx[src]
					src++
				}
				continue
			}
			base += idx[src] * srcStrides[i]
			src++
		}

		buf = buf[:0]
		for _, k := range groups[group] {
			buf = append(buf, v.Data[base+k*dimStride])
		}
		out.Data[flat] = fn(buf)
	})

	return out, nil
}
