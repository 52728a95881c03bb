package dataset

import (
	"fmt"
	"maps"
	"slices"
)

// Dataset is a mutable container of named variables and coordinates.
// Variable and coordinate names keep their insertion order.
type Dataset struct {
	// Attrs are global dataset attributes
	Attrs map[string]string

	varNames   []string
	vars       map[string]*Variable
	coordNames []string
	coords     map[string]*Coordinate
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{
		Attrs:  make(map[string]string),
		vars:   make(map[string]*Variable),
		coords: make(map[string]*Coordinate),
	}
}

// Set stores v under name, replacing any existing variable of that name.
func (d *Dataset) Set(name string, v *Variable) {
	if _, ok := d.vars[name]; !ok {
		d.varNames = append(d.varNames, name)
	}
	d.vars[name] = v
}

// Variable returns the data variable stored under name. Coordinates are not considered.
func (d *Dataset) Variable(name string) (*Variable, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// Get returns the variable stored under name. When no variable exists but a
// coordinate of that name does, the coordinate is returned as a variable.
func (d *Dataset) Get(name string) (*Variable, bool) {
	if v, ok := d.vars[name]; ok {
		return v, true
	}
	if c, ok := d.coords[name]; ok {
		return c.AsVariable(), true
	}
	return nil, false
}

// Has reports whether name refers to a variable or a coordinate.
func (d *Dataset) Has(name string) bool {
	_, isVar := d.vars[name]
	_, isCoord := d.coords[name]
	return isVar || isCoord
}

// Names returns the variable names in insertion order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.varNames)
}

// Len returns the number of data variables.
func (d *Dataset) Len() int {
	return len(d.varNames)
}

// CoordNames returns the coordinate names in insertion order.
func (d *Dataset) CoordNames() []string {
	return slices.Clone(d.coordNames)
}

// Coord returns the dataset-level coordinate stored under name.
func (d *Dataset) Coord(name string) (*Coordinate, bool) {
	c, ok := d.coords[name]
	return c, ok
}

// HasCoord reports whether a dataset-level coordinate named name exists.
func (d *Dataset) HasCoord(name string) bool {
	_, ok := d.coords[name]
	return ok
}

// SetCoord stores c, replacing any coordinate of the same name.
func (d *Dataset) SetCoord(c *Coordinate) {
	if _, ok := d.coords[c.Name]; !ok {
		d.coordNames = append(d.coordNames, c.Name)
	}
	d.coords[c.Name] = c
}

// AddCoordIfAbsent stores c only when no coordinate of the same name exists.
// It reports whether c was added.
func (d *Dataset) AddCoordIfAbsent(c *Coordinate) bool {
	if d.HasCoord(c.Name) {
		return false
	}
	d.SetCoord(c)
	return true
}

// AttachCoords associates every dataset coordinate whose dimensions are all
// present in v (with matching sizes) with v.
func (d *Dataset) AttachCoords(v *Variable) {
	if v.Coords == nil {
		v.Coords = make(map[string]*Coordinate)
	}
	for _, name := range d.coordNames {
		c := d.coords[name]
		if _, ok := v.Coords[name]; ok {
			continue
		}
		if fitsDims(c, v) {
			v.Coords[name] = c
		}
	}
}

// Rename moves the variable (or coordinate) stored under oldName to newName.
func (d *Dataset) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if d.Has(newName) {
		return fmt.Errorf("cannot rename %q to %q: name already in use", oldName, newName)
	}

	if v, ok := d.vars[oldName]; ok {
		delete(d.vars, oldName)
		d.vars[newName] = v
		d.varNames[slices.Index(d.varNames, oldName)] = newName
		return nil
	}

	if c, ok := d.coords[oldName]; ok {
		renamed := *c
		renamed.Name = newName
		delete(d.coords, oldName)
		d.coords[newName] = &renamed
		d.coordNames[slices.Index(d.coordNames, oldName)] = newName
		return nil
	}

	return fmt.Errorf("cannot rename %q: %w", oldName, ErrVariableNotFound)
}

// Drop removes the variable stored under name, if any.
func (d *Dataset) Drop(name string) {
	if _, ok := d.vars[name]; !ok {
		return
	}
	delete(d.vars, name)
	d.varNames = slices.DeleteFunc(d.varNames, func(n string) bool { return n == name })
}

// Select returns a new dataset holding only the named variables and all
// coordinates. Every name must exist.
func (d *Dataset) Select(names []string) (*Dataset, error) {
	out := New()
	out.Attrs = maps.Clone(d.Attrs)
	for _, name := range d.coordNames {
		out.SetCoord(d.coords[name])
	}
	for _, name := range names {
		v, ok := d.vars[name]
		if !ok {
			return nil, fmt.Errorf("cannot select %q: %w", name, ErrVariableNotFound)
		}
		out.Set(name, v)
	}
	return out, nil
}

// Merge adds every variable, coordinate and attribute of other that d does
// not already hold. Existing entries in d win.
func (d *Dataset) Merge(other *Dataset) {
	for _, name := range other.coordNames {
		d.AddCoordIfAbsent(other.coords[name])
	}
	for _, name := range other.varNames {
		if _, ok := d.vars[name]; !ok {
			d.Set(name, other.vars[name])
		}
	}
	for k, val := range other.Attrs {
		if _, ok := d.Attrs[k]; !ok {
			d.Attrs[k] = val
		}
	}
}

// Clone returns a shallow copy: the containers are new, variables and
// coordinates are shared.
func (d *Dataset) Clone() *Dataset {
	return &Dataset{
		Attrs:      maps.Clone(d.Attrs),
		varNames:   slices.Clone(d.varNames),
		vars:       maps.Clone(d.vars),
		coordNames: slices.Clone(d.coordNames),
		coords:     maps.Clone(d.coords),
	}
}

func fitsDims(c *Coordinate, v *Variable) bool {
	for i, dim := range c.Dims {
		size, ok := v.DimSize(dim)
		if !ok || size != c.Shape[i] {
			return false
		}
	}
	return true
}
