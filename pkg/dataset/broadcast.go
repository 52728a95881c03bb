package dataset

import (
	"fmt"
	"maps"
	"slices"
)

// ExpandDims returns a copy of v with the given dimensions prepended.
// Values are repeated along every new dimension.
func (v *Variable) ExpandDims(dims []string, sizes []int) (*Variable, error) {
	if len(dims) != len(sizes) {
		return nil, &ShapeError{
			Op:      "expand_dims",
			Message: fmt.Sprintf("%d dimension names for %d sizes", len(dims), len(sizes)),
		}
	}
	for _, dim := range dims {
		if v.HasDim(dim) {
			return nil, &DimensionError{Dim: dim, Message: "already present"}
		}
	}

	newDims := append(slices.Clone(dims), v.Dims...)
	newShape := append(slices.Clone(sizes), v.Shape...)

	// Prepended dims are outermost, so the new buffer is the old one tiled.
	reps := product(sizes)
	data := make([]float64, 0, reps*len(v.Data))
	for i := 0; i < reps; i++ {
		data = append(data, v.Data...)
	}

	out, err := NewVariable(newDims, newShape, data)
	if err != nil {
		return nil, err
	}
	out.Attrs = maps.Clone(v.attrs())
	out.Coords = maps.Clone(v.coords())
	return out, nil
}

// Transpose returns a copy of v with its dimensions reordered to order.
func (v *Variable) Transpose(order []string) (*Variable, error) {
	if !SameDimSet(order, v.Dims) {
		return nil, &ShapeError{
			Op:      "transpose",
			Message: fmt.Sprintf("%v is not a permutation of %v", order, v.Dims),
		}
	}
	if slices.Equal(order, v.Dims) {
		return v.Copy(), nil
	}

	srcStrides := v.Strides()
	perm := make([]int, len(order))
	newShape := make([]int, len(order))
	for i, dim := range order {
		perm[i] = v.DimIndex(dim)
		newShape[i] = v.Shape[perm[i]]
	}

	out := v.WithData(make([]float64, v.Size()))
	out.Dims = slices.Clone(order)
	out.Shape = newShape
	out.ForEachIndex(func(idx []int, flat int) {
		src := 0
		for i, p := range perm {
			src += idx[i] * srcStrides[p]
		}
		out.Data[flat] = v.Data[src]
	})
	return out, nil
}

// BroadcastLike expands v with every dimension of ref it lacks and, when the
// resulting dimension set equals ref's, reorders it to ref's dimension order.
// It returns the aligned variable and the names of the dimensions that were
// added. Dimensions present in both must have equal sizes.
func (v *Variable) BroadcastLike(ref *Variable) (*Variable, []string, error) {
	var missing []string
	var sizes []int
	for i, dim := range ref.Dims {
		size, ok := v.DimSize(dim)
		if !ok {
			missing = append(missing, dim)
			sizes = append(sizes, ref.Shape[i])
			continue
		}
		if size != ref.Shape[i] {
			return nil, nil, &DimensionError{
				Dim:     dim,
				Message: fmt.Sprintf("size %d cannot be broadcast to size %d", size, ref.Shape[i]),
			}
		}
	}

	out := v
	if len(missing) > 0 {
		expanded, err := v.ExpandDims(missing, sizes)
		if err != nil {
			return nil, nil, err
		}
		for name, c := range coordsWithin(ref.Coords, expanded.Dims) {
			if _, ok := expanded.Coords[name]; !ok {
				expanded.Coords[name] = c
			}
		}
		out = expanded
	}

	if SameDimSet(out.Dims, ref.Dims) && !slices.Equal(out.Dims, ref.Dims) {
		transposed, err := out.Transpose(ref.Dims)
		if err != nil {
			return nil, nil, err
		}
		out = transposed
	}

	return out, missing, nil
}
