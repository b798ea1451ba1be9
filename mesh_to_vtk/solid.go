package main

import (
	"sort"

	"github.com/unixpickle/model3d/model3d"
)

// rayDirections are fixed, irregular directions used for
// parity tests. They are the ModelNet voxelizer's set, so
// occupancy grids match the voxels it exported; none of
// them is parallel to an axis-aligned face.
var rayDirections = []model3d.Coord3D{
	{X: -0.40475415, Y: 0.86174632, Z: -0.30588783},
	{X: -0.81025101, Y: 0.38452447, Z: -0.44230559},
	{X: -0.09226702, Y: -0.74875317, Z: -0.65639584},
	{X: -0.99668947, Y: 0.08087344, Z: 0.00834144},
	{X: 0.67074042, Y: -0.60098173, Z: 0.43465877},
}

// A MeshSolid tests containment in a mesh that may have
// holes or (near-)duplicate triangles.
//
// A point is inside if most rays cast from it cross the
// surface an odd number of times.
type MeshSolid struct {
	model3d.Collider
}

// NewMeshSolid creates a solid from a mesh.
func NewMeshSolid(m *model3d.Mesh) *MeshSolid {
	return &MeshSolid{Collider: model3d.MeshToCollider(m)}
}

func (m *MeshSolid) Contains(c model3d.Coord3D) bool {
	if !model3d.InBounds(m, c) {
		return false
	}
	var odd int
	for _, d := range rayDirections {
		if m.numCrossings(c, d)%2 == 1 {
			odd++
		}
	}
	return 2*odd > len(rayDirections)
}

func (m *MeshSolid) numCrossings(coord, direction model3d.Coord3D) int {
	var scales []float64
	m.Collider.RayCollisions(&model3d.Ray{
		Origin:    coord,
		Direction: direction,
	}, func(r model3d.RayCollision) {
		scales = append(scales, r.Scale)
	})
	if len(scales) == 0 {
		return 0
	}
	sort.Float64s(scales)

	// Crossings closer than epsilon count once, so that
	// duplicate triangles act as one boundary.
	epsilon := m.Max().Sub(m.Min()).Norm() * 1e-8
	num := 1
	for i := 1; i < len(scales); i++ {
		if scales[i]-scales[i-1] > epsilon {
			num++
		}
	}
	return num
}
