package dataset

import (
	"slices"
	"testing"
)

func sum(values []float64) float64 {
	total := 0.0
	for _, x := range values {
		total += x
	}
	return total
}

func TestVariable_Isel(t *testing.T) {
	// layer x face: [[1 2 3] [4 5 6]]
	v := MustVariable([]string{"layer", "face"}, []int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	v.Coords["face"] = NewIndexCoordinate("face", []float64{0, 1, 2})
	v.Coords["layer"] = NewIndexCoordinate("layer", []float64{0, 1})

	out, err := v.Isel("layer", 1)
	if err != nil {
		t.Fatalf("Isel() error = %v", err)
	}
	if want := []string{"face"}; !slices.Equal(out.Dims, want) {
		t.Errorf("Dims = %v, want %v", out.Dims, want)
	}
	if want := []float64{4, 5, 6}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}
	if _, ok := out.Coords["layer"]; ok {
		t.Error("dropped dimension kept its coordinate")
	}
	if _, ok := out.Coords["face"]; !ok {
		t.Error("face coordinate was lost")
	}

	col, err := v.Isel("face", 2)
	if err != nil {
		t.Fatalf("Isel(face) error = %v", err)
	}
	if want := []float64{3, 6}; !slices.Equal(col.Data, want) {
		t.Errorf("Isel(face, 2) = %v, want %v", col.Data, want)
	}

	if _, err := v.Isel("layer", 2); err == nil {
		t.Error("Isel() out of range succeeded")
	}
	if _, err := v.Isel("time", 0); err == nil {
		t.Error("Isel() on a missing dimension succeeded")
	}
}

func TestVariable_Reduce(t *testing.T) {
	v := MustVariable([]string{"time", "face"}, []int{3, 2}, []float64{1, 2, 3, 4, 5, 6})

	out, err := v.Reduce("time", sum)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := []float64{9, 12}; !slices.Equal(out.Data, want) {
		t.Errorf("Reduce(time) = %v, want %v", out.Data, want)
	}

	out, err = v.Reduce("face", sum)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if want := []float64{3, 7, 11}; !slices.Equal(out.Data, want) {
		t.Errorf("Reduce(face) = %v, want %v", out.Data, want)
	}
}

func TestVariable_GroupReduce(t *testing.T) {
	v := MustVariable([]string{"time", "face"}, []int{4, 1}, []float64{1, 2, 3, 4})

	out, err := v.GroupReduce("time", "time_year", [][]int{{0, 1}, {2, 3}}, sum)
	if err != nil {
		t.Fatalf("GroupReduce() error = %v", err)
	}
	if want := []string{"time_year", "face"}; !slices.Equal(out.Dims, want) {
		t.Errorf("Dims = %v, want %v", out.Dims, want)
	}
	if want := []float64{3, 7}; !slices.Equal(out.Data, want) {
		t.Errorf("Data = %v, want %v", out.Data, want)
	}

	if _, err := v.GroupReduce("time", "time_year", [][]int{{4}}, sum); err == nil {
		t.Error("GroupReduce() with out-of-range index succeeded")
	}
	if _, err := v.GroupReduce("time", "face", [][]int{{0}}, sum); err == nil {
		t.Error("GroupReduce() onto an existing dimension succeeded")
	}
}
