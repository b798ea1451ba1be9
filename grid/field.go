// Package grid implements scalar and vector fields sampled
// on regular 3D lattices.
package grid

import (
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// Checked enables per-access index validation in
// Dimension.Index. It defaults to true only inside test
// binaries; construction always validates shapes.
var Checked = testing.Testing()

// Dimension is the number of samples along each axis.
type Dimension struct {
	X, Y, Z int
}

// Len gets the total number of samples.
func (d Dimension) Len() int {
	return d.X * d.Y * d.Z
}

// Index gets the linear offset of a sample, with x
// varying fastest, then y, then z.
func (d Dimension) Index(x, y, z int) int {
	if Checked && !d.Contains(x, y, z) {
		panic(fmt.Sprintf("sample (%d, %d, %d) out of bounds for %v", x, y, z, d))
	}
	return x + d.X*(y+z*d.Y)
}

// Contains checks if integer coordinates name a sample.
func (d Dimension) Contains(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < d.X && y < d.Y && z < d.Z
}

// Valid checks that every axis has at least one sample
// and that the total number of samples fits in an int.
func (d Dimension) Valid() bool {
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return false
	}
	return d.X <= math.MaxInt/d.Y && d.X*d.Y <= math.MaxInt/d.Z
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// Geometry places a lattice in space.
type Geometry struct {
	Dim     Dimension
	Spacing model3d.Coord3D
	Origin  model3d.Coord3D
}

// Validate checks that the lattice is non-empty and has
// positive spacing on all axes.
func (g Geometry) Validate() error {
	if !g.Dim.Valid() {
		return errors.Errorf("invalid dimensions %v", g.Dim)
	}
	if !(g.Spacing.X > 0 && g.Spacing.Y > 0 && g.Spacing.Z > 0) {
		return errors.Errorf("invalid spacing %v", g.Spacing)
	}
	return nil
}

// Header holds the descriptive lines of a dataset.
type Header struct {
	Version string
	Title   string
}

// A ScalarArray is one named scalar attribute with its
// cached value range.
type ScalarArray struct {
	name     string
	values   []float64
	min, max float64
}

// NewScalarArray creates an array and computes its range.
func NewScalarArray(name string, values []float64) *ScalarArray {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return NewScalarArrayRange(name, values, min, max)
}

// NewScalarArrayRange creates an array from values whose
// range was already tracked by the caller.
//
// The values slice is owned by the array afterwards.
func NewScalarArrayRange(name string, values []float64, min, max float64) *ScalarArray {
	return &ScalarArray{name: name, values: values, min: min, max: max}
}

func (s *ScalarArray) Name() string {
	return s.name
}

func (s *ScalarArray) Len() int {
	return len(s.values)
}

func (s *ScalarArray) Min() float64 {
	return s.min
}

func (s *ScalarArray) Max() float64 {
	return s.max
}

// Range gets the cached minimum and maximum.
func (s *ScalarArray) Range() (min, max float64) {
	return s.min, s.max
}

// Values gets the flat sample buffer.
// The result must not be modified.
func (s *ScalarArray) Values() []float64 {
	return s.values
}

// A ScalarField is a lattice with one or more named
// scalar arrays sharing its geometry.
//
// A ScalarField is immutable once created and may be
// shared between goroutines.
type ScalarField struct {
	header Header
	geom   Geometry
	arrays []*ScalarArray
}

// NewScalarField creates a field, checking that every
// array has one value per lattice sample.
func NewScalarField(h Header, g Geometry, arrays []*ScalarArray) (*ScalarField, error) {
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "new scalar field")
	}
	if len(arrays) == 0 {
		return nil, errors.New("new scalar field: no arrays")
	}
	n := g.Dim.Len()
	for _, a := range arrays {
		if a.Len() != n {
			return nil, errors.Errorf("new scalar field: array %q has %d values, expected %d",
				a.Name(), a.Len(), n)
		}
	}
	return &ScalarField{
		header: h,
		geom:   g,
		arrays: append([]*ScalarArray{}, arrays...),
	}, nil
}

func (s *ScalarField) Header() Header {
	return s.header
}

func (s *ScalarField) Geometry() Geometry {
	return s.geom
}

func (s *ScalarField) Dim() Dimension {
	return s.geom.Dim
}

func (s *ScalarField) Spacing() model3d.Coord3D {
	return s.geom.Spacing
}

func (s *ScalarField) Origin() model3d.Coord3D {
	return s.geom.Origin
}

// NumArrays gets the number of named arrays.
func (s *ScalarField) NumArrays() int {
	return len(s.arrays)
}

// Array gets an array by index.
func (s *ScalarField) Array(i int) *ScalarArray {
	return s.arrays[i]
}

// ArrayIndex finds an array by name, returning -1 if no
// array has the name.
func (s *ScalarField) ArrayIndex(name string) int {
	for i, a := range s.arrays {
		if a.Name() == name {
			return i
		}
	}
	return -1
}

// Value gets the sample of an array at integer
// coordinates.
func (s *ScalarField) Value(array, x, y, z int) float64 {
	return s.arrays[array].values[s.geom.Dim.Index(x, y, z)]
}

// Coord gets the position of a sample relative to the
// lattice origin, i.e. its integer coordinates scaled by
// the spacing.
func (s *ScalarField) Coord(x, y, z int) model3d.Coord3D {
	return model3d.Coord3D{
		X: float64(x) * s.geom.Spacing.X,
		Y: float64(y) * s.geom.Spacing.Y,
		Z: float64(z) * s.geom.Spacing.Z,
	}
}

// Extent gets the size of the box spanned by the samples,
// (n-1)*spacing on each axis.
func (s *ScalarField) Extent() model3d.Coord3D {
	d := s.geom.Dim
	return s.Coord(d.X-1, d.Y-1, d.Z-1)
}

// Size gets n*spacing on each axis.
func (s *ScalarField) Size() model3d.Coord3D {
	d := s.geom.Dim
	return s.Coord(d.X, d.Y, d.Z)
}
