package mcubes

import (
	"fmt"
	"math"
	"runtime"

	"github.com/heyimalaap/ScalarFieldViewer/grid"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/sync/errgroup"
)

// DegenerateEpsilon is the smallest difference between the
// two values of an edge for which the crossing point is
// interpolated. Closer values put the crossing at the
// edge's midpoint.
const DegenerateEpsilon = 1e-12

// fallbackNormal is used where the interpolated gradient
// vanishes.
var fallbackNormal = model3d.Coord3D{Z: 1}

// CellCorners holds the samples at the corners of a cell,
// in corner order.
type CellCorners struct {
	Values    [NumCorners]float64
	Gradients [NumCorners]model3d.Coord3D
	Positions [NumCorners]model3d.Coord3D
}

// GatherCorners reads the corners of the cell whose lowest
// corner is (x, y, z).
func GatherCorners(f *grid.ScalarField, array int, grads *grid.VectorField, x, y, z int) *CellCorners {
	var res CellCorners
	res.gather(f, f.Array(array).Values(), grads.Vectors(), x, y, z)
	return &res
}

func (c *CellCorners) gather(f *grid.ScalarField, values []float64, grads []model3d.Coord3D,
	x, y, z int) {
	dim := f.Dim()
	for i, off := range tables.cornerOffsets {
		cx, cy, cz := x+off[0], y+off[1], z+off[2]
		idx := dim.Index(cx, cy, cz)
		c.Values[i] = values[idx]
		c.Gradients[i] = grads[idx]
		c.Positions[i] = f.Coord(cx, cy, cz)
	}
}

// Triangulate extracts the isosurface of an array as a
// triangle soup.
//
// The gradients must have been computed from the same
// array, e.g. with grid.Gradient.
//
// Cells are visited with x on the outer loop, then y, then
// z, so the output is deterministic.
func Triangulate(f *grid.ScalarField, array int, grads *grid.VectorField,
	isovalue float64) *Soup {
	checkShapes(f, grads)
	soup := &Soup{}
	if outsideRange(f.Array(array), isovalue) {
		return soup
	}
	dim := f.Dim()
	triangulateSlab(soup, f, array, grads, isovalue, 0, dim.X-1)
	return soup
}

// Options configures TriangulateParallel.
type Options struct {
	// Workers is the maximum number of goroutines.
	// If 0, GOMAXPROCS is used.
	Workers int
}

// TriangulateParallel is like Triangulate, but splits the
// x range into slabs processed concurrently.
//
// The slab outputs are joined in order, so the result is
// identical to that of Triangulate.
func TriangulateParallel(f *grid.ScalarField, array int, grads *grid.VectorField,
	isovalue float64, opts Options) *Soup {
	checkShapes(f, grads)
	if outsideRange(f.Array(array), isovalue) {
		return &Soup{}
	}

	numCellsX := f.Dim().X - 1
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > numCellsX {
		workers = numCellsX
	}
	if workers <= 1 {
		return Triangulate(f, array, grads, isovalue)
	}

	slabs := make([]Soup, workers)
	chunk := (numCellsX + workers - 1) / workers
	var g errgroup.Group
	for i := range slabs {
		start := i * chunk
		end := start + chunk
		if end > numCellsX {
			end = numCellsX
		}
		if start >= end {
			break
		}
		slab := &slabs[i]
		g.Go(func() error {
			triangulateSlab(slab, f, array, grads, isovalue, start, end)
			return nil
		})
	}
	essentials.Must(g.Wait())

	res := &Soup{}
	for i := range slabs {
		res.Append(&slabs[i])
	}
	return res
}

func checkShapes(f *grid.ScalarField, grads *grid.VectorField) {
	if f.Dim() != grads.Dim() {
		panic(fmt.Sprintf("gradient dimensions %v do not match field %v", grads.Dim(), f.Dim()))
	}
}

func outsideRange(a *grid.ScalarArray, isovalue float64) bool {
	min, max := a.Range()
	return isovalue < min || isovalue > max
}

// triangulateSlab processes the cells with x in
// [startX, endX).
func triangulateSlab(soup *Soup, f *grid.ScalarField, array int, grads *grid.VectorField,
	isovalue float64, startX, endX int) {
	dim := f.Dim()
	values := f.Array(array).Values()
	gradVecs := grads.Vectors()

	var corners CellCorners
	for x := startX; x < endX; x++ {
		for y := 0; y < dim.Y-1; y++ {
			for z := 0; z < dim.Z-1; z++ {
				corners.gather(f, values, gradVecs, x, y, z)
				corners.Triangulate(soup, isovalue)
			}
		}
	}
}

// Triangulate appends the triangles of this cell to a
// soup.
func (c *CellCorners) Triangulate(soup *Soup, isovalue float64) {
	config := Classify(&c.Values, isovalue)
	mask := tables.edgeMasks[config]
	if mask == 0 {
		return
	}

	var positions, normals [NumEdges]model3d.Coord3D
	for edge := 0; edge < NumEdges; edge++ {
		if mask&(1<<uint(edge)) == 0 {
			continue
		}
		v1, v2 := tables.edgeCorners[edge][0], tables.edgeCorners[edge][1]
		t := EdgeParameter(c.Values[v1], c.Values[v2], isovalue)
		positions[edge] = lerp(c.Positions[v1], c.Positions[v2], t)
		normals[edge] = safeNormalize(lerp(c.Gradients[v1], c.Gradients[v2], t))
	}

	row := &tables.triangles[config]
	for i := 0; row[i] != Sentinel; i += 3 {
		for _, edge := range row[i : i+3] {
			soup.Positions = append(soup.Positions, positions[edge])
			soup.Normals = append(soup.Normals, normals[edge])
		}
	}
}

// EdgeParameter gets the fraction of the way from the
// first to the second endpoint at which a linear
// interpolation of the values hits the isovalue.
//
// If the values are nearly equal, 0.5 is returned.
func EdgeParameter(s1, s2, isovalue float64) float64 {
	d := s2 - s1
	if math.Abs(d) < DegenerateEpsilon {
		return 0.5
	}
	return (isovalue - s1) / d
}

func lerp(a, b model3d.Coord3D, t float64) model3d.Coord3D {
	return a.Scale(1 - t).Add(b.Scale(t))
}

func safeNormalize(c model3d.Coord3D) model3d.Coord3D {
	norm := c.Norm()
	if norm == 0 {
		return fallbackNormal
	}
	return c.Scale(1 / norm)
}
