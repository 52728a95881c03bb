package dataset

import (
	"fmt"
	"maps"
	"slices"
)

// Coordinate labels one or more dimensions (e.g. "time", "mesh2d_face_x").
type Coordinate struct {
	Name   string
	Dims   []string
	Shape  []int
	Values []float64
	Attrs  map[string]string
}

// NewCoordinate creates a coordinate spanning dims.
func NewCoordinate(name string, dims []string, shape []int, values []float64) (*Coordinate, error) {
	if name == "" {
		return nil, &ShapeError{Op: "coordinate", Message: "coordinate has no name"}
	}
	if len(dims) != len(shape) {
		return nil, &ShapeError{
			Op:      "coordinate",
			Message: fmt.Sprintf("coordinate %q has %d dims for %d sizes", name, len(dims), len(shape)),
		}
	}
	if len(values) != product(shape) {
		return nil, &ShapeError{
			Op:      "coordinate",
			Message: fmt.Sprintf("coordinate %q shape %v needs %d values, got %d", name, shape, product(shape), len(values)),
		}
	}
	return &Coordinate{
		Name:   name,
		Dims:   slices.Clone(dims),
		Shape:  slices.Clone(shape),
		Values: values,
		Attrs:  make(map[string]string),
	}, nil
}

// NewIndexCoordinate creates a one-dimensional coordinate over its own dimension.
func NewIndexCoordinate(name string, values []float64) *Coordinate {
	return &Coordinate{
		Name:   name,
		Dims:   []string{name},
		Shape:  []int{len(values)},
		Values: values,
		Attrs:  make(map[string]string),
	}
}

// AsVariable exposes the coordinate as a variable so it can be used as a rule input.
func (c *Coordinate) AsVariable() *Variable {
	v := &Variable{
		Dims:   slices.Clone(c.Dims),
		Shape:  slices.Clone(c.Shape),
		Data:   slices.Clone(c.Values),
		Attrs:  maps.Clone(c.Attrs),
		Coords: map[string]*Coordinate{c.Name: c},
	}
	if v.Attrs == nil {
		v.Attrs = make(map[string]string)
	}
	return v
}

// Equal reports whether both coordinates carry the same dims and values.
func (c *Coordinate) Equal(o *Coordinate) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	return c.Name == o.Name &&
		slices.Equal(c.Dims, o.Dims) &&
		slices.Equal(c.Shape, o.Shape) &&
		slices.Equal(c.Values, o.Values)
}
