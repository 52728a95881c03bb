package dataset

import (
	"errors"
	"slices"
	"testing"
)

func TestVariable_ExpandDims(t *testing.T) {
	v := MustVariable([]string{"face"}, []int{3}, []float64{1, 2, 3})
	v.Attrs["units"] = "m"

	out, err := v.ExpandDims([]string{"time"}, []int{2})
	if err != nil {
		t.Fatalf("ExpandDims() error = %v", err)
	}

	if want := []string{"time", "face"}; !slices.Equal(out.Dims, want) {
		t.Errorf("Dims = %v, want %v", out.Dims, want)
	}
	if want := []float64{1, 2, 3, 1, 2, 3}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}
	if out.Attrs["units"] != "m" {
		t.Errorf("units = %q, want %q", out.Attrs["units"], "m")
	}

	if _, err := v.ExpandDims([]string{"face"}, []int{2}); err == nil {
		t.Error("ExpandDims() with an existing dimension succeeded")
	}
}

func TestVariable_Transpose(t *testing.T) {
	// face x time: [[1 2] [3 4] [5 6]]
	v := MustVariable([]string{"face", "time"}, []int{3, 2}, []float64{1, 2, 3, 4, 5, 6})

	out, err := v.Transpose([]string{"time", "face"})
	if err != nil {
		t.Fatalf("Transpose() error = %v", err)
	}
	if want := []int{2, 3}; !slices.Equal(out.Shape, want) {
		t.Errorf("Shape = %v, want %v", out.Shape, want)
	}
	if want := []float64{1, 3, 5, 2, 4, 6}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}

	_, err = v.Transpose([]string{"time", "layer"})
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("Transpose(non-permutation) error = %v, want *ShapeError", err)
	}
}

func TestVariable_BroadcastLike(t *testing.T) {
	ref := MustVariable([]string{"time", "face"}, []int{2, 3}, nil)
	ref.Coords["time"] = NewIndexCoordinate("time", []float64{0, 86400})

	tests := []struct {
		name      string
		v         *Variable
		wantDims  []string
		wantAdded []string
		wantData  []float64
		wantErr   bool
	}{
		{
			name:      "missing outer dim",
			v:         MustVariable([]string{"face"}, []int{3}, []float64{1, 2, 3}),
			wantDims:  []string{"time", "face"},
			wantAdded: []string{"time"},
			wantData:  []float64{1, 2, 3, 1, 2, 3},
		},
		{
			name:      "missing inner dim is moved to reference order",
			v:         MustVariable([]string{"time"}, []int{2}, []float64{10, 20}),
			wantDims:  []string{"time", "face"},
			wantAdded: []string{"face"},
			wantData:  []float64{10, 10, 10, 20, 20, 20},
		},
		{
			name:     "same dims different order",
			v:        MustVariable([]string{"face", "time"}, []int{3, 2}, []float64{1, 2, 3, 4, 5, 6}),
			wantDims: []string{"time", "face"},
			wantData: []float64{1, 3, 5, 2, 4, 6},
		},
		{
			name:    "size conflict",
			v:       MustVariable([]string{"face"}, []int{4}, nil),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, added, err := tt.v.BroadcastLike(ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BroadcastLike() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !slices.Equal(out.Dims, tt.wantDims) {
				t.Errorf("Dims = %v, want %v", out.Dims, tt.wantDims)
			}
			if !slices.Equal(added, tt.wantAdded) {
				t.Errorf("added = %v, want %v", added, tt.wantAdded)
			}
			if !slices.Equal(out.Data, tt.wantData) {
				t.Errorf("Data = %v, want %v", out.Data, tt.wantData)
			}
		})
	}
}

func TestVariable_BroadcastLikeCarriesReferenceCoords(t *testing.T) {
	ref := MustVariable([]string{"time", "face"}, []int{2, 1}, nil)
	ref.Coords["time"] = NewIndexCoordinate("time", []float64{0, 86400})

	v := MustVariable([]string{"face"}, []int{1}, []float64{5})
	out, _, err := v.BroadcastLike(ref)
	if err != nil {
		t.Fatalf("BroadcastLike() error = %v", err)
	}
	if _, ok := out.Coords["time"]; !ok {
		t.Error("broadcast result is missing the time coordinate")
	}
	if _, ok := v.Coords["time"]; ok {
		t.Error("BroadcastLike() modified the source coordinates")
	}
}
