// Package dataset provides the in-memory working dataset that impact rules
// read from and write to.
//
// A Dataset is a mutable container of named N-dimensional arrays
// (Variables) plus a separate set of named Coordinates. Every array carries
// named dimensions, not merely positional ones, so rules can address axes by
// name ("time", "mesh2d_nFaces", "mesh2d_nLayers") and inputs of different
// rank can be broadcast against each other.
//
// # Layout
//
// Variable data is stored as a flat []float64 in row-major order. Missing
// values are math.NaN(). The helpers Strides, Flat, Index and ForEachIndex
// convert between flat offsets and N-dimensional indices.
//
// # Broadcasting
//
//	ref, _ := dataset.NewVariable([]string{"time", "face"}, []int{2, 3}, nil)
//	bed, _ := dataset.NewVariable([]string{"face"}, []int{3}, []float64{-1, -2, -3})
//
//	aligned, added, err := bed.BroadcastLike(ref)
//	// aligned.Dims == ["time", "face"], added == ["time"]
//
// # Ownership
//
// A Dataset is not safe for concurrent mutation. During one model run it is
// owned by a single rule processor which mutates it in place.
package dataset
