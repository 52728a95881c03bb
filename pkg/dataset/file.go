package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// fileDocument is the on-disk layout of a dataset file.
type fileDocument struct {
	Attrs     map[string]string `json:"attrs,omitempty"`
	Coords    []fileArray       `json:"coords,omitempty"`
	Variables []fileArray       `json:"variables"`
}

type fileArray struct {
	Name  string            `json:"name"`
	Dims  []string          `json:"dims"`
	Shape []int             `json:"shape"`
	Data  []nullFloat       `json:"data"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// nullFloat encodes NaN and infinities as JSON null and decodes null as NaN.
type nullFloat float64

func (f nullFloat) MarshalJSON() ([]byte, error) {
	x := float64(f)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, x, 'g', -1, 64), nil
}

func (f *nullFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*f = nullFloat(math.NaN())
		return nil
	}
	var x float64
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}
	*f = nullFloat(x)
	return nil
}

// ReadFile loads a dataset from a JSON dataset file.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Cause: err}
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Cause: err}
	}
	return ds, nil
}

// WriteFile stores ds as a JSON dataset file, creating parent directories as needed.
func WriteFile(path string, ds *Dataset) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &FileError{Path: path, Op: "write", Cause: err}
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, ds); err != nil {
		return &FileError{Path: path, Op: "write", Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &FileError{Path: path, Op: "write", Cause: err}
	}
	return nil
}

// Decode reads a dataset document from r. Dataset-level coordinates are
// attached to every variable that spans all of the coordinate's dimensions.
func Decode(r io.Reader) (*Dataset, error) {
	var doc fileDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid dataset document: %w", err)
	}

	ds := New()
	for k, v := range doc.Attrs {
		ds.Attrs[k] = v
	}

	for _, fc := range doc.Coords {
		c, err := NewCoordinate(fc.Name, fc.Dims, fc.Shape, toFloats(fc.Data))
		if err != nil {
			return nil, err
		}
		for k, v := range fc.Attrs {
			c.Attrs[k] = v
		}
		ds.SetCoord(c)
	}

	for _, fv := range doc.Variables {
		if fv.Name == "" {
			return nil, &ShapeError{Op: "decode", Message: "variable has no name"}
		}
		if ds.Has(fv.Name) {
			return nil, &ShapeError{Op: "decode", Message: fmt.Sprintf("duplicate name %q", fv.Name)}
		}
		v, err := NewVariable(fv.Dims, fv.Shape, toFloats(fv.Data))
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", fv.Name, err)
		}
		for k, val := range fv.Attrs {
			v.Attrs[k] = val
		}
		ds.AttachCoords(v)
		ds.Set(fv.Name, v)
	}

	return ds, nil
}

// Encode writes ds to w as an indented dataset document.
func Encode(w io.Writer, ds *Dataset) error {
	doc := fileDocument{
		Attrs:     ds.Attrs,
		Variables: make([]fileArray, 0, ds.Len()),
	}
	for _, name := range ds.CoordNames() {
		c, _ := ds.Coord(name)
		doc.Coords = append(doc.Coords, fileArray{
			Name:  c.Name,
			Dims:  c.Dims,
			Shape: c.Shape,
			Data:  fromFloats(c.Values),
			Attrs: c.Attrs,
		})
	}
	for _, name := range ds.Names() {
		v, _ := ds.Variable(name)
		doc.Variables = append(doc.Variables, fileArray{
			Name:  name,
			Dims:  v.Dims,
			Shape: v.Shape,
			Data:  fromFloats(v.Data),
			Attrs: v.Attrs,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func toFloats(in []nullFloat) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = float64(x)
	}
	return out
}

func fromFloats(in []float64) []nullFloat {
	out := make([]nullFloat, len(in))
	for i, x := range in {
		out[i] = nullFloat(x)
	}
	return out
}
