package main

import (
	"math"
	"runtime"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/sync/errgroup"
)

// A Solid is a bounded region of space.
type Solid interface {
	Min() model3d.Coord3D
	Max() model3d.Coord3D
	Contains(c model3d.Coord3D) bool
}

// An OccupancySampler computes the fraction of the space
// around each lattice sample that is inside a solid.
type OccupancySampler struct {
	Solid      Solid
	Lattice    grid.Geometry
	Subsamples int
}

// NewOccupancySampler creates a sampler with cubic cells,
// gridSize samples along the longest side of the solid's
// bounding box, and padding extra samples on every side.
func NewOccupancySampler(s Solid, gridSize, padding, subsamples int) *OccupancySampler {
	size := s.Max().Sub(s.Min())
	longest := math.Max(math.Max(size.X, size.Y), size.Z)
	spacing := longest / float64(gridSize-1)
	if spacing == 0 {
		spacing = 1
	}
	axisSamples := func(length float64) int {
		return int(math.Ceil(length/spacing)) + 1 + 2*padding
	}
	pad := float64(padding) * spacing
	return &OccupancySampler{
		Solid: s,
		Lattice: grid.Geometry{
			Dim: grid.Dimension{
				X: axisSamples(size.X),
				Y: axisSamples(size.Y),
				Z: axisSamples(size.Z),
			},
			Spacing: model3d.Coord3D{X: spacing, Y: spacing, Z: spacing},
			Origin:  s.Min().Sub(model3d.Coord3D{X: pad, Y: pad, Z: pad}),
		},
		Subsamples: subsamples,
	}
}

// Coord gets the world position of a lattice sample.
func (o *OccupancySampler) Coord(x, y, z int) model3d.Coord3D {
	l := o.Lattice
	return l.Origin.Add(model3d.Coord3D{
		X: float64(x) * l.Spacing.X,
		Y: float64(y) * l.Spacing.Y,
		Z: float64(z) * l.Spacing.Z,
	})
}

// Occupancy gets the fraction of sub-samples in the cell
// centered at a lattice sample that are inside the solid.
func (o *OccupancySampler) Occupancy(x, y, z int) float64 {
	center := o.Coord(x, y, z)
	k := o.Subsamples
	if k <= 1 {
		if o.Solid.Contains(center) {
			return 1
		}
		return 0
	}
	offset := func(i int, spacing float64) float64 {
		return ((float64(i)+0.5)/float64(k) - 0.5) * spacing
	}
	var inside int
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			for l := 0; l < k; l++ {
				c := center.Add(model3d.Coord3D{
					X: offset(i, o.Lattice.Spacing.X),
					Y: offset(j, o.Lattice.Spacing.Y),
					Z: offset(l, o.Lattice.Spacing.Z),
				})
				if o.Solid.Contains(c) {
					inside++
				}
			}
		}
	}
	return float64(inside) / float64(k*k*k)
}

// Field samples the whole lattice into a scalar field.
func (o *OccupancySampler) Field(name, title string) (*grid.ScalarField, error) {
	dim := o.Lattice.Dim
	values := make([]float64, dim.Len())

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for z := 0; z < dim.Z; z++ {
		z := z
		g.Go(func() error {
			for y := 0; y < dim.Y; y++ {
				for x := 0; x < dim.X; x++ {
					values[dim.Index(x, y, z)] = o.Occupancy(x, y, z)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "sample occupancy")
	}

	f, err := grid.NewScalarField(grid.Header{Title: title}, o.Lattice,
		[]*grid.ScalarArray{grid.NewScalarArray(name, values)})
	if err != nil {
		return nil, errors.Wrap(err, "sample occupancy")
	}
	return f, nil
}
