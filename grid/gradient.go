package grid

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/sync/errgroup"
)

// A VectorField stores one 3D vector per lattice sample.
type VectorField struct {
	dim     Dimension
	vectors []model3d.Coord3D
}

// NewVectorField wraps a flat buffer of vectors.
func NewVectorField(dim Dimension, vectors []model3d.Coord3D) (*VectorField, error) {
	if !dim.Valid() {
		return nil, errors.Errorf("new vector field: invalid dimensions %v", dim)
	}
	if len(vectors) != dim.Len() {
		return nil, errors.Errorf("new vector field: %d vectors, expected %d", len(vectors), dim.Len())
	}
	return &VectorField{dim: dim, vectors: vectors}, nil
}

func (v *VectorField) Dim() Dimension {
	return v.dim
}

// At gets the vector at integer coordinates.
func (v *VectorField) At(x, y, z int) model3d.Coord3D {
	return v.vectors[v.dim.Index(x, y, z)]
}

// Vectors gets the flat buffer, x fastest.
// The result must not be modified.
func (v *VectorField) Vectors() []model3d.Coord3D {
	return v.vectors
}

// Gradient estimates the gradient of an array at every
// sample using finite differences.
//
// Each axis is handled on its own: interior samples use
// central differences, and samples on the low (high)
// boundary plane use forward (backward) differences.
// Axes with a single sample get a zero component.
func Gradient(f *ScalarField, array int) *VectorField {
	dim := f.Dim()
	res := &VectorField{dim: dim, vectors: make([]model3d.Coord3D, dim.Len())}
	for z := 0; z < dim.Z; z++ {
		gradientSlice(f, array, res, z)
	}
	return res
}

// GradientParallel is like Gradient, but splits the z
// planes across goroutines.
//
// If workers is 0, GOMAXPROCS is used.
func GradientParallel(f *ScalarField, array, workers int) *VectorField {
	dim := f.Dim()
	res := &VectorField{dim: dim, vectors: make([]model3d.Coord3D, dim.Len())}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for z := 0; z < dim.Z; z++ {
		z := z
		g.Go(func() error {
			gradientSlice(f, array, res, z)
			return nil
		})
	}
	essentials.Must(g.Wait())
	return res
}

func gradientSlice(f *ScalarField, array int, out *VectorField, z int) {
	dim := f.Dim()
	spacing := f.Spacing()
	values := f.Array(array).Values()
	strideY := dim.X
	strideZ := dim.X * dim.Y
	for y := 0; y < dim.Y; y++ {
		for x := 0; x < dim.X; x++ {
			idx := dim.Index(x, y, z)
			out.vectors[idx] = model3d.Coord3D{
				X: axisDerivative(values, idx, x, dim.X, 1, spacing.X),
				Y: axisDerivative(values, idx, y, dim.Y, strideY, spacing.Y),
				Z: axisDerivative(values, idx, z, dim.Z, strideZ, spacing.Z),
			}
		}
	}
}

// axisDerivative estimates the derivative along one axis
// at position i of n, where neighbors are stride apart in
// the flat buffer.
func axisDerivative(values []float64, idx, i, n, stride int, h float64) float64 {
	switch {
	case n < 2:
		return 0
	case i == 0:
		return (values[idx+stride] - values[idx]) / h
	case i == n-1:
		return (values[idx] - values[idx-stride]) / h
	default:
		return (values[idx+stride] - values[idx-stride]) / (2 * h)
	}
}
